// Package session wires the practice components around one player.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/reprise-cli/reprise/clock"
	"github.com/reprise-cli/reprise/event"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/loop"
	"github.com/reprise-cli/reprise/metronome"
	"github.com/reprise-cli/reprise/playback"
	"github.com/reprise-cli/reprise/practice"
	"github.com/reprise-cli/reprise/preset"
	"github.com/reprise-cli/reprise/share"
	"github.com/reprise-cli/reprise/store"
	"github.com/reprise-cli/reprise/trainer"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	MinSpeed = 0.25
	MaxSpeed = 2.0
)

var ErrNoVideo = errors.New("no video is open")

// Titler looks up video titles.
type Titler interface {
	Title(ctx context.Context, id string) (string, error)
}

// Deps are the collaborators a session is built from.
type Deps struct {
	Player playback.Player
	Store  store.KV
	Wall   clock.Wall
	Audio  clock.Audio
	Clicks metronome.Output
	// Titles is optional.
	Titles Titler
}

// Stats is a snapshot of the running session.
type Stats struct {
	RepCount       int
	CurrentSpeed   float64
	SessionSeconds int
	TodayMinutes   float64
	Streak         int
}

// Session owns the practice components of one player.
type Session struct {
	Bus       *event.Bus
	Loop      *loop.Controller
	Trainer   *trainer.Trainer
	Timer     *practice.Timer
	Metronome *metronome.Metronome
	Library   *library.Library
	Presets   *preset.Book

	player playback.Player
	kv     store.KV
	titles Titler
	opts   Options

	mu     sync.Mutex
	video  mo.Option[library.Video]
	state  playback.State
	closed bool

	unsubscribe []func()
	cancel      context.CancelFunc
	background  context.Context
	fetches     sync.WaitGroup
}

// New builds a session. Progressive and metronome settings saved by an earlier session
// take precedence over opts, except for the fields opts changed since then.
func New(deps Deps, opts Options) *Session {
	bus := event.NewBus()

	trainerSettings := LoadTrainerSettings(deps.Store, opts.Trainer)
	metronomeSettings := LoadMetronomeSettings(deps.Store, opts.Metronome)

	background, cancel := context.WithCancel(context.Background())

	s := &Session{
		Bus: bus,
		Loop: loop.New(deps.Player, deps.Wall, loop.Options{
			PollInterval: opts.LoopPollInterval,
			RepSpacing:   opts.RepSpacing,
			Publisher:    bus,
		}),
		Trainer: trainer.New(deps.Player, trainerSettings, bus),
		Timer: practice.NewTimer(deps.Store, deps.Wall, practice.Options{
			TickInterval:     opts.TickInterval,
			AutosaveInterval: opts.AutosaveInterval,
			RetentionDays:    opts.RetentionDays,
			Publisher:        bus,
		}),
		Metronome: metronome.New(deps.Audio, deps.Clicks, deps.Wall, metronomeSettings, metronome.Options{
			Lookahead:     opts.Lookahead,
			ScheduleAhead: opts.ScheduleAhead,
			Publisher:     bus,
		}),
		Library:    library.New(deps.Store),
		Presets:    preset.New(deps.Store),
		player:     deps.Player,
		kv:         deps.Store,
		titles:     deps.Titles,
		opts:       opts,
		background: background,
		cancel:     cancel,
	}

	s.Loop.OnRep(s.Trainer.OnRep)

	if !opts.DisableAnalytics {
		s.unsubscribe = append(s.unsubscribe, bus.Subscribe(event.Analytics))
	}

	s.unsubscribe = append(s.unsubscribe, deps.Player.Subscribe(s.onState))

	return s
}

func (s *Session) onState(state playback.State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	switch state {
	case playback.Playing:
		s.Timer.OnPlaying()
	case playback.Paused, playback.Ended:
		s.Timer.OnPausedOrEnded()
	}
}

// State returns the last reported playback state.
func (s *Session) State() playback.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Video returns the open video.
func (s *Session) Video() (library.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.video.Get()
}

// Options returns the options the session was built with.
func (s *Session) Options() Options {
	return s.opts
}

// Open clears the loop and starts playing video.
// A missing title is looked up in the background and stored in the library.
func (s *Session) Open(ctx context.Context, video library.Video) error {
	s.Loop.Clear()

	if err := s.player.Load(video.URL(), video.Name()); err != nil {
		return fmt.Errorf("open %s: %w", video.ID, err)
	}

	s.mu.Lock()
	s.video = mo.Some(video)
	s.mu.Unlock()

	if video.Title == "" && s.opts.FetchTitles && s.titles != nil {
		s.fetches.Add(1)
		go s.fetchTitle(ctx, video.ID)
	}

	return nil
}

func (s *Session) fetchTitle(ctx context.Context, id string) {
	defer s.fetches.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.background, cancel)
	defer stop()

	title, err := s.titles.Title(ctx, id)
	if err != nil {
		log.Debugf("session: no title for %s: %s", id, err)
		return
	}

	if err := s.Library.SetTitle(id, title); err != nil && !errors.Is(err, library.ErrNotFound) {
		log.Warnf("session: saving title of %s: %s", id, err)
	}

	s.mu.Lock()
	if video, ok := s.video.Get(); ok && video.ID == id {
		video.Title = title
		s.video = mo.Some(video)
	}
	s.mu.Unlock()
}

// ApplyLink applies the speed and loop of a shared link. A complete loop is enabled
// and playback jumps to its start; a lone start is only seeked to.
func (s *Session) ApplyLink(link share.Link) error {
	if speed, ok := link.Speed.Get(); ok {
		if _, err := s.SetSpeed(speed); err != nil {
			return err
		}
	}

	start, hasStart := link.Start.Get()

	if link.HasLoop() {
		s.Loop.SetRegion(loop.Region{Start: link.Start, End: link.End})
		if !s.Loop.Enabled() {
			s.Loop.Toggle()
		}
	}

	if hasStart {
		if err := s.player.SeekTo(start, true); err != nil {
			return fmt.Errorf("seek to %.1f: %w", start, err)
		}
	}

	return s.player.Play()
}

// LoadPreset sets the loop region to p and seeks to its start.
func (s *Session) LoadPreset(p preset.Preset) error {
	s.Loop.SetRegion(p.Region())
	return s.player.SeekTo(p.Start, true)
}

// SavePreset stores the current loop region of the open video.
func (s *Session) SavePreset(name string) (preset.Preset, error) {
	video, ok := s.Video()
	if !ok {
		return preset.Preset{}, ErrNoVideo
	}

	region := s.Loop.Region()
	start, okStart := region.Start.Get()
	end, okEnd := region.End.Get()
	if !okStart || !okEnd {
		return preset.Preset{}, preset.ErrInvalidRegion
	}

	return s.Presets.Save(video.ID, name, start, end)
}

// ShareLink builds a link to the open video with the current loop and speed.
func (s *Session) ShareLink() (string, error) {
	video, ok := s.Video()
	if !ok {
		return "", ErrNoVideo
	}

	region := s.Loop.Region()
	return share.Build(s.opts.ShareBaseURL, share.Link{
		VideoID: video.ID,
		Start:   region.Start,
		End:     region.End,
		Speed:   mo.Some(s.Speed()),
	})
}

// SetSpeed clamps rate to [0.25, 2], applies it and returns the applied rate.
func (s *Session) SetSpeed(rate float64) (float64, error) {
	rate = lo.Clamp(rate, MinSpeed, MaxSpeed)
	if err := s.player.SetRate(rate); err != nil {
		return 0, fmt.Errorf("set speed: %w", err)
	}

	s.Bus.Publish(event.Event{Kind: event.SpeedChanged, Data: map[string]any{"speed": rate, "source": "manual"}})
	return rate, nil
}

// Speed returns the playback rate, or 1 when the player cannot tell.
func (s *Session) Speed() float64 {
	rate, err := s.player.Rate()
	if err != nil || rate <= 0 {
		return 1
	}
	return rate
}

// Position returns the playback position and the media duration. Unknown values are 0.
func (s *Session) Position() (position, duration float64) {
	position, _ = s.player.CurrentTime()
	duration, _ = s.player.Duration()
	return position, duration
}

// Nudge seeks by delta seconds relative to the current position, never before 0.
func (s *Session) Nudge(delta float64) error {
	t, err := s.player.CurrentTime()
	if err != nil {
		return err
	}

	return s.player.SeekTo(max(0, t+delta), true)
}

// SeekPercent seeks to a fraction p of the duration, p being clamped to [0, 1].
func (s *Session) SeekPercent(p float64) error {
	d, err := s.player.Duration()
	if err != nil {
		return err
	}

	return s.player.SeekTo(lo.Clamp(p, 0, 1)*d, true)
}

// TogglePause pauses a playing video and plays anything else.
func (s *Session) TogglePause() error {
	if s.State() == playback.Playing {
		return s.player.Pause()
	}
	return s.player.Play()
}

// Stats returns a snapshot of the session.
func (s *Session) Stats() Stats {
	return Stats{
		RepCount:       s.Loop.Reps(),
		CurrentSpeed:   s.Speed(),
		SessionSeconds: s.Timer.SessionSeconds(),
		TodayMinutes:   s.Timer.TodayMinutes(),
		Streak:         s.Timer.Streak(),
	}
}

// ShowStreak reports whether the streak is long enough to display.
func (s *Session) ShowStreak() bool {
	return s.Timer.Streak() >= s.opts.StreakDisplayMin
}

// SaveSettings stores the progressive and metronome settings for the next session.
func (s *Session) SaveSettings() {
	SaveTrainerSettings(s.kv, s.opts.Trainer, s.Trainer.Settings())
	SaveMetronomeSettings(s.kv, s.opts.Metronome, s.Metronome.Settings())
}

// Close stops every periodic activity, flushes the practice timer, saves the settings
// and closes the player. Later calls do nothing.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}

	s.cancel()
	s.fetches.Wait()

	s.Loop.Stop()
	s.Metronome.Stop()
	s.Timer.Close()
	s.SaveSettings()

	return s.player.Close()
}

// Done is closed when the current player process exits.
func (s *Session) Done() <-chan struct{} {
	return s.player.Wait()
}
