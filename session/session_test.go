package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/reprise-cli/reprise/clock"
	"github.com/reprise-cli/reprise/event"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/loop"
	"github.com/reprise-cli/reprise/metronome"
	"github.com/reprise-cli/reprise/playback"
	"github.com/reprise-cli/reprise/practice"
	"github.com/reprise-cli/reprise/preset"
	"github.com/reprise-cli/reprise/share"
	"github.com/reprise-cli/reprise/store"
	"github.com/reprise-cli/reprise/trainer"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

const videoID = "dQw4w9WgXcQ"

type clicks struct {
	mu  sync.Mutex
	all []metronome.Click
}

func (c *clicks) Schedule(click metronome.Click) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = append(c.all, click)
}

type titles map[string]string

func (t titles) Title(_ context.Context, id string) (string, error) {
	if title, ok := t[id]; ok {
		return title, nil
	}
	return "", errors.New("no title")
}

type fixture struct {
	session *Session
	player  *playback.Fake
	kv      *store.Memory
	wall    *clock.Manual
	events  *[]event.Event
}

func testOptions() Options {
	return Options{
		LoopPollInterval: -1,
		TickInterval:     -1,
		AutosaveInterval: -1,
		Lookahead:        -1,
		Trainer:          trainer.DefaultSettings(),
		Metronome:        metronome.DefaultSettings(),
		StreakDisplayMin: 3,
		ShareBaseURL:     "https://www.youtube.com/watch",
		FetchTitles:      true,
		DisableAnalytics: true,
	}
}

func newFixture(kv *store.Memory) fixture {
	return newFixtureWith(kv, testOptions())
}

func newFixtureWith(kv *store.Memory, opts Options) fixture {
	player := playback.NewFake(240)
	wall := clock.NewManual(time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC))

	s := New(Deps{
		Player: player,
		Store:  kv,
		Wall:   wall,
		Audio:  &clock.ManualAudio{},
		Clicks: &clicks{},
		Titles: titles{videoID: "Never Gonna Give You Up"},
	}, opts)

	var events []event.Event
	s.Bus.Subscribe(func(e event.Event) { events = append(events, e) })

	return fixture{session: s, player: player, kv: kv, wall: wall, events: &events}
}

func kinds(events []event.Event) []event.Kind {
	out := make([]event.Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestSession(t *testing.T) {
	Convey("Given a session", t, func() {
		f := newFixture(store.NewMemory())
		s := f.session

		Convey("Nothing can be shared before a video is open", func() {
			_, err := s.ShareLink()
			So(errors.Is(err, ErrNoVideo), ShouldBeTrue)
			_, err = s.SavePreset("x")
			So(errors.Is(err, ErrNoVideo), ShouldBeTrue)
		})

		Convey("When a video is opened", func() {
			s.Loop.SetRegion(loop.NewRegion(1, 2))
			So(s.Open(context.Background(), library.Video{ID: videoID, Title: "Song"}), ShouldBeNil)

			Convey("It plays and the previous loop is gone", func() {
				So(f.player.Loaded(), ShouldEqual, library.URL(videoID))
				So(s.State(), ShouldEqual, playback.Playing)
				So(s.Loop.Region(), ShouldResemble, loop.Region{})
				So(s.Timer.Running(), ShouldBeTrue)
			})

			Convey("Pausing flushes the practice timer", func() {
				for range 90 {
					s.Timer.Tick()
				}
				So(s.TogglePause(), ShouldBeNil)
				So(s.State(), ShouldEqual, playback.Paused)
				So(s.Timer.Running(), ShouldBeFalse)
				So(s.Stats().TodayMinutes, ShouldEqual, 1.5)
				So(practice.LoadLog(f.kv).Minutes(f.wall.Now()), ShouldEqual, 1.5)
				So(kinds(*f.events), ShouldContain, event.PracticeFlushed)
			})

			Convey("Loop reps drive progressive training", func() {
				_, err := s.SetSpeed(0.9)
				So(err, ShouldBeNil)
				s.Trainer.SetRepsPerStep(1)
				s.Trainer.Enable()

				s.Loop.SetRegion(loop.NewRegion(10, 20))
				So(s.Loop.Toggle(), ShouldBeTrue)

				f.player.SetPosition(20)
				s.Loop.Tick()

				So(s.Stats().RepCount, ShouldEqual, 1)
				So(s.Speed(), ShouldEqual, 0.95)
				So(kinds(*f.events), ShouldContain, event.ProgressiveSpeedUp)

				f.wall.Advance(time.Second)
				f.player.SetPosition(20.1)
				s.Loop.Tick()

				So(s.Speed(), ShouldEqual, 1.0)
				So(s.Trainer.State(), ShouldEqual, trainer.Complete)
				So(kinds(*f.events), ShouldContain, event.ProgressiveTargetReached)
			})

			Convey("Speed is clamped", func() {
				rate, err := s.SetSpeed(3)
				So(err, ShouldBeNil)
				So(rate, ShouldEqual, MaxSpeed)

				rate, _ = s.SetSpeed(0.1)
				So(rate, ShouldEqual, MinSpeed)
				So(s.Stats().CurrentSpeed, ShouldEqual, MinSpeed)

				last := (*f.events)[len(*f.events)-1]
				So(last.Kind, ShouldEqual, event.SpeedChanged)
				So(last.Float("speed"), ShouldEqual, MinSpeed)
			})

			Convey("Seeking never goes before the start", func() {
				f.player.SetPosition(3)
				So(s.Nudge(-5), ShouldBeNil)
				pos, dur := s.Position()
				So(pos, ShouldEqual, 0)
				So(dur, ShouldEqual, 240)

				So(s.Nudge(5), ShouldBeNil)
				pos, _ = s.Position()
				So(pos, ShouldEqual, 5)

				So(s.SeekPercent(0.5), ShouldBeNil)
				pos, _ = s.Position()
				So(pos, ShouldEqual, 120)

				So(s.SeekPercent(2), ShouldBeNil)
				pos, _ = s.Position()
				So(pos, ShouldEqual, 240)
			})

			Convey("A shared link sets speed and an enabled loop", func() {
				link, err := share.Parse("https://www.youtube.com/watch?v=" + videoID + "&start=30&end=45.5&speed=0.75")
				So(err, ShouldBeNil)
				So(s.ApplyLink(link), ShouldBeNil)

				So(s.Speed(), ShouldEqual, 0.75)
				So(s.Loop.Enabled(), ShouldBeTrue)
				So(s.Loop.Region(), ShouldResemble, loop.NewRegion(30, 45.5))
				So(f.player.Seeks[len(f.player.Seeks)-1], ShouldEqual, 30)

				raw, err := s.ShareLink()
				So(err, ShouldBeNil)
				So(raw, ShouldEqual, "https://www.youtube.com/watch?end=45.5&speed=0.75&start=30&v="+videoID)
			})

			Convey("The loop is saved and loaded as a preset", func() {
				_, err := s.SavePreset("empty")
				So(errors.Is(err, preset.ErrInvalidRegion), ShouldBeTrue)

				s.Loop.SetRegion(loop.NewRegion(12, 24))
				p, err := s.SavePreset("")
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "Loop 1")

				s.Loop.Clear()
				So(s.LoadPreset(p), ShouldBeNil)
				So(s.Loop.Region(), ShouldResemble, loop.NewRegion(12, 24))
				pos, _ := s.Position()
				So(pos, ShouldEqual, 12)
			})
		})

		Convey("Closing saves the settings and flushes", func() {
			So(s.Open(context.Background(), library.Video{ID: videoID, Title: "Song"}), ShouldBeNil)
			s.Trainer.SetTargetSpeed(1.5)
			s.Metronome.SetBPM(90)
			for range 30 {
				s.Timer.Tick()
			}

			So(s.Close(), ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			So(practice.LoadLog(f.kv).Minutes(f.wall.Now()), ShouldEqual, 0.5)

			Convey("And the next session starts from them", func() {
				next := newFixture(f.kv).session
				So(next.Trainer.Settings().TargetSpeed, ShouldEqual, 1.5)
				So(next.Metronome.BPM(), ShouldEqual, 90)
			})

			Convey("And configuration edited since then takes effect", func() {
				opts := testOptions()
				opts.Trainer.RepsPerStep = 7
				opts.Metronome.Volume = 0.2

				next := newFixtureWith(f.kv, opts).session
				So(next.Trainer.Settings().RepsPerStep, ShouldEqual, 7)
				So(next.Metronome.Volume(), ShouldEqual, 0.2)
				So(next.Trainer.Settings().TargetSpeed, ShouldEqual, 1.5)
				So(next.Metronome.BPM(), ShouldEqual, 90)

				Convey("While later adjustments under the same configuration persist", func() {
					next.Metronome.SetVolume(0.4)
					next.Trainer.SetRepsPerStep(5)
					So(next.Close(), ShouldBeNil)

					again := newFixtureWith(f.kv, opts).session
					defer again.Close()
					So(again.Metronome.Volume(), ShouldEqual, 0.4)
					So(again.Trainer.Settings().RepsPerStep, ShouldEqual, 5)
				})
			})
		})

		Convey("A missing title is fetched into the library", func() {
			video, err := s.Library.Add(videoID, "")
			So(err, ShouldBeNil)
			So(s.Open(context.Background(), video), ShouldBeNil)
			s.fetches.Wait()

			stored, err := s.Library.Get(videoID)
			So(err, ShouldBeNil)
			So(stored.Title, ShouldEqual, "Never Gonna Give You Up")

			current, ok := s.Video()
			So(ok, ShouldBeTrue)
			So(current.Name(), ShouldEqual, "Never Gonna Give You Up")
		})

		Convey("Player failures surface", func() {
			f.player.Fail(errors.New("mpv is gone"))
			So(s.Open(context.Background(), library.Video{ID: videoID}), ShouldNotBeNil)
			_, ok := s.Video()
			So(ok, ShouldBeFalse)
			_, err := s.SetSpeed(1)
			So(err, ShouldNotBeNil)
			So(s.Speed(), ShouldEqual, 1)
		})

		Reset(func() {
			_ = s.Close()
		})
	})
}

func TestShareLinkOmitsUnsetBounds(t *testing.T) {
	Convey("A share link without a loop only names the video", t, func() {
		f := newFixture(store.NewMemory())
		defer f.session.Close()

		So(f.session.Open(context.Background(), library.Video{ID: videoID, Title: "t"}), ShouldBeNil)
		f.session.Loop.SetRegion(loop.Region{Start: mo.Some(5.0)})

		raw, err := f.session.ShareLink()
		So(err, ShouldBeNil)
		So(raw, ShouldEqual, "https://www.youtube.com/watch?start=5&v="+videoID)
	})
}

func TestSettingsRestore(t *testing.T) {
	Convey("Given stored settings without the configuration they were saved under", t, func() {
		kv := store.NewMemory()
		So(store.SaveJSON(kv, trainer.StoreKey, trainer.Settings{RepsPerStep: 4, SpeedStep: 0.1, TargetSpeed: 1.2}), ShouldBeNil)

		Convey("The stored values win", func() {
			settings := LoadTrainerSettings(kv, trainer.Settings{RepsPerStep: 9, SpeedStep: 0.05, TargetSpeed: 1})
			So(settings, ShouldResemble, trainer.Settings{RepsPerStep: 4, SpeedStep: 0.1, TargetSpeed: 1.2})
		})
	})

	Convey("Given nothing stored", t, func() {
		kv := store.NewMemory()

		Convey("The configuration is used, clamped", func() {
			settings := LoadMetronomeSettings(kv, metronome.Settings{BPM: 500, TimeSignature: "9/9", Volume: 2})
			So(settings, ShouldResemble, metronome.Settings{BPM: 300, TimeSignature: "4/4", Volume: 1})
		})
	})

	Convey("Saved settings follow configuration changes field by field", t, func() {
		kv := store.NewMemory()
		configured := metronome.DefaultSettings()
		SaveMetronomeSettings(kv, configured, metronome.Settings{BPM: 80, TimeSignature: "3/4", Volume: 0.7})

		configured.TimeSignature = "6/8"
		settings := LoadMetronomeSettings(kv, configured)
		So(settings, ShouldResemble, metronome.Settings{BPM: 80, TimeSignature: "6/8", Volume: 0.7})
	})
}
