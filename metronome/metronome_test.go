package metronome

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/reprise-cli/reprise/clock"
	"github.com/reprise-cli/reprise/event"
	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	clicks []Click
}

func (r *recorder) Schedule(c Click) {
	r.clicks = append(r.clicks, c)
}

func (r *recorder) times() []float64 {
	times := make([]float64, len(r.clicks))
	for i, c := range r.clicks {
		times[i] = c.At
	}
	return times
}

func TestSettings(t *testing.T) {
	Convey("Given time signatures", t, func() {
		ts, err := ParseTimeSignature("6/8")
		So(err, ShouldBeNil)
		So(ts, ShouldResemble, TimeSignature{Beats: 6, NoteValue: 8})
		So(ts.String(), ShouldEqual, "6/8")

		_, err = ParseTimeSignature("9/8")
		So(errors.Is(err, ErrTimeSignature), ShouldBeTrue)

		_, err = ParseTimeSignature("four")
		So(errors.Is(err, ErrTimeSignature), ShouldBeTrue)

		So(NextTimeSignature(CommonTime).String(), ShouldEqual, "5/4")
		So(NextTimeSignature(TimeSignature{Beats: 7, NoteValue: 8}).String(), ShouldEqual, "2/4")
	})

	Convey("Given settings out of range", t, func() {
		s := Settings{BPM: 5, TimeSignature: "11/4", Volume: 3}.Normalize()
		So(s, ShouldResemble, Settings{BPM: 20, TimeSignature: "4/4", Volume: 1})
		So(ClampBPM(999), ShouldEqual, 300)
		So(ClampVolume(math.NaN()), ShouldEqual, 0)
	})
}

func TestClick(t *testing.T) {
	Convey("Given clicks", t, func() {
		down := NewClick(1, true, 0.7)
		up := NewClick(1, false, 0.7)

		So(down.Frequency, ShouldEqual, 1000)
		So(up.Frequency, ShouldEqual, 800)
		So(down.Length, ShouldEqual, 0.05)

		Convey("The envelope decays exponentially from the volume to the floor", func() {
			So(down.Gain(0), ShouldEqual, 0.7)
			So(down.Gain(0.025), ShouldAlmostEqual, 0.7*math.Sqrt(0.001/0.7), 1e-9)
			So(down.Gain(0.0499), ShouldBeLessThan, 0.0011)
			So(down.Gain(0.05), ShouldEqual, 0)
			So(down.Gain(-0.01), ShouldEqual, 0)
		})

		Convey("A muted click is silent", func() {
			So(NewClick(0, true, 0).Sample(0.01), ShouldEqual, 0)
		})
	})
}

func TestTapper(t *testing.T) {
	Convey("Given a tapper", t, func() {
		var tapper Tapper
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		at := func(ms int) time.Time { return start.Add(time.Duration(ms) * time.Millisecond) }

		Convey("One tap gives no tempo", func() {
			_, ok := tapper.Tap(at(0))
			So(ok, ShouldBeFalse)
		})

		Convey("Half-second taps give 120 BPM", func() {
			tapper.Tap(at(0))
			tapper.Tap(at(500))
			bpm, ok := tapper.Tap(at(1000))
			So(ok, ShouldBeTrue)
			So(bpm, ShouldEqual, 120)
		})

		Convey("Uneven taps are averaged and rounded", func() {
			tapper.Tap(at(0))
			tapper.Tap(at(400))
			bpm, _ := tapper.Tap(at(1000))
			So(bpm, ShouldEqual, 120)

			bpm, _ = tapper.Tap(at(1700))
			So(bpm, ShouldEqual, 106)
		})

		Convey("A pause over two seconds starts over", func() {
			tapper.Tap(at(0))
			tapper.Tap(at(500))
			_, ok := tapper.Tap(at(2600))
			So(ok, ShouldBeFalse)
			So(tapper.Len(), ShouldEqual, 1)
		})

		Convey("Only the last eight taps count", func() {
			for i := 0; i < 12; i++ {
				tapper.Tap(at(i * 250))
			}
			So(tapper.Len(), ShouldEqual, 8)
		})

		Convey("Tempos are clamped", func() {
			tapper.Tap(at(0))
			bpm, _ := tapper.Tap(at(100))
			So(bpm, ShouldEqual, 300)

			var slow Tapper
			slow.Tap(at(0))
			bpm, _ = slow.Tap(at(1999))
			So(bpm, ShouldEqual, 30)
		})
	})
}

func TestMetronome(t *testing.T) {
	Convey("Given a metronome at 120 BPM in 4/4", t, func() {
		audio := &clock.ManualAudio{}
		audio.Advance(10)
		wall := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		out := &recorder{}
		bus := event.NewBus()

		var kinds []event.Kind
		bus.Subscribe(func(e event.Event) { kinds = append(kinds, e.Kind) })

		m := New(audio, out, wall, DefaultSettings(), Options{Lookahead: -1, Publisher: bus})

		var flashes []Flash
		m.OnFlash(func(f Flash) { flashes = append(flashes, f) })

		Convey("Start schedules the first beat at the current audio time", func() {
			m.Start()
			So(out.times(), ShouldResemble, []float64{10})
			So(out.clicks[0].Downbeat, ShouldBeTrue)
			So(m.BeatCount(), ShouldEqual, 1)
			So(m.NextNoteTime(), ShouldEqual, 10.5)
			So(kinds, ShouldResemble, []event.Kind{event.MetronomeStarted})

			Convey("Passes only schedule beats inside the window", func() {
				audio.Advance(0.3)
				m.Tick()
				So(out.clicks, ShouldHaveLength, 1)

				audio.Advance(0.15)
				m.Tick()
				So(out.times(), ShouldResemble, []float64{10, 10.5})
				So(out.clicks[1].Downbeat, ShouldBeFalse)
				So(out.clicks[1].Frequency, ShouldEqual, 800)
			})

			Convey("Every fourth beat is a downbeat", func() {
				for i := 0; i < 8; i++ {
					audio.Advance(0.5)
					m.Tick()
				}
				var downbeats []int
				for i, c := range out.clicks {
					if c.Downbeat {
						downbeats = append(downbeats, i)
					}
				}
				So(downbeats, ShouldResemble, []int{0, 4, 8})
			})

			Convey("Beats flash on the wall clock and go dark", func() {
				wall.Advance(0)
				So(flashes, ShouldResemble, []Flash{{On: true, Downbeat: true, Beat: 0}})

				wall.Advance(FlashLength)
				So(flashes[len(flashes)-1], ShouldResemble, Flash{})
			})

			Convey("A flash is delayed by the beat's lead time", func() {
				audio.Advance(0.45)
				m.Tick()
				wall.Advance(0)
				wall.Advance(49 * time.Millisecond)
				So(flashes, ShouldHaveLength, 1)

				wall.Advance(2 * time.Millisecond)
				So(flashes[len(flashes)-1], ShouldResemble, Flash{On: true, Beat: 1})
			})

			Convey("Stop keeps the beat count and cancels pending flashes", func() {
				m.Stop()
				m.Stop()
				So(m.Running(), ShouldBeFalse)
				So(m.BeatCount(), ShouldEqual, 1)
				So(wall.Pending(), ShouldEqual, 0)
				So(flashes, ShouldResemble, []Flash{{}})
				So(kinds, ShouldResemble, []event.Kind{event.MetronomeStarted, event.MetronomeStopped})

				audio.Advance(1)
				m.Tick()
				So(out.clicks, ShouldHaveLength, 1)
			})

			Convey("A new time signature restarts from the downbeat", func() {
				m.SetTimeSignature(TimeSignature{Beats: 3, NoteValue: 4})
				So(m.BeatCount(), ShouldEqual, 0)

				audio.Advance(0.5)
				m.Tick()
				So(out.clicks[len(out.clicks)-1].Downbeat, ShouldBeTrue)
			})

			Convey("A tempo change applies to the next unscheduled beat", func() {
				So(m.SetBPM(60), ShouldEqual, 60)
				audio.Advance(0.5)
				m.Tick()
				So(m.NextNoteTime(), ShouldEqual, 11.5)
			})
		})

		Convey("Stopping a stopped metronome emits nothing", func() {
			m.Stop()
			So(kinds, ShouldBeEmpty)
			So(flashes, ShouldBeEmpty)
		})

		Convey("Volume and tempo are clamped", func() {
			So(m.SetVolume(-1), ShouldEqual, 0)
			So(m.SetBPM(1000), ShouldEqual, 300)
			So(m.Settings(), ShouldResemble, Settings{BPM: 300, TimeSignature: "4/4", Volume: 0})
		})

		Convey("Clicks carry the current volume", func() {
			m.SetVolume(0.3)
			m.Start()
			So(out.clicks[0].Volume, ShouldEqual, 0.3)
		})

		Convey("Tapping sets the tempo from the wall clock", func() {
			m.Tap()
			wall.Advance(750 * time.Millisecond)
			bpm, ok := m.Tap()
			So(ok, ShouldBeTrue)
			So(bpm, ShouldEqual, 80)
			So(m.BPM(), ShouldEqual, 80)
		})

		Convey("Toggle starts and stops", func() {
			So(m.Toggle(), ShouldBeTrue)
			So(m.Toggle(), ShouldBeFalse)
		})
	})
}

func TestMetronomeBackground(t *testing.T) {
	Convey("Given a metronome with the background scheduler", t, func() {
		audio := &clock.ManualAudio{}
		out := &syncRecorder{}
		m := New(audio, out, clock.System{}, Settings{BPM: 300, TimeSignature: "4/4", Volume: 0.5}, Options{Lookahead: time.Millisecond})
		Reset(m.Stop)

		m.Start()
		audio.Advance(1)

		Convey("Beats keep being scheduled as audio time passes", func() {
			deadline := time.Now().Add(2 * time.Second)
			for out.count() < 5 && time.Now().Before(deadline) {
				time.Sleep(2 * time.Millisecond)
			}
			So(out.count(), ShouldBeGreaterThanOrEqualTo, 5)
		})
	})
}
