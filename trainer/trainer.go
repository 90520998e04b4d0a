// Package trainer raises the playback speed step by step as loop reps accumulate.
package trainer

import (
	"fmt"
	"sync"

	"github.com/reprise-cli/reprise/event"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/playback"
	"github.com/reprise-cli/reprise/util"
)

// State is the training phase.
type State int

const (
	Idle State = iota
	Training
	Complete
)

func (s State) String() string {
	switch s {
	case Training:
		return "training"
	case Complete:
		return "complete"
	default:
		return "idle"
	}
}

// Trainer counts reps at the current speed and speeds up every RepsPerStep reps until TargetSpeed.
type Trainer struct {
	mu        sync.Mutex
	handle    playback.Handle
	publisher event.Publisher

	settings Settings
	state    State
	reps     int
}

// New returns an idle trainer. Settings are normalized.
func New(handle playback.Handle, settings Settings, publisher event.Publisher) *Trainer {
	if publisher == nil {
		publisher = event.Discard{}
	}

	return &Trainer{
		handle:    handle,
		publisher: publisher,
		settings:  settings.Normalize(),
	}
}

// Enable starts training from zero reps, also after a completed run.
func (t *Trainer) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Training
	t.reps = 0
}

// Disable stops training. The playback speed is left as it is.
func (t *Trainer) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Idle
}

// Toggle switches between training and idle and returns whether training is on.
func (t *Trainer) Toggle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == Training {
		t.state = Idle
		return false
	}

	t.state = Training
	t.reps = 0
	return true
}

func (t *Trainer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Enabled reports whether training is in progress.
func (t *Trainer) Enabled() bool {
	return t.State() == Training
}

// Reps returns the reps counted at the current speed.
func (t *Trainer) Reps() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reps
}

func (t *Trainer) Settings() Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// SetSettings replaces all settings after clamping them.
func (t *Trainer) SetSettings(s Settings) Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settings = s.Normalize()
	return t.settings
}

// SetRepsPerStep clamps and applies n, returning the stored value.
func (t *Trainer) SetRepsPerStep(n int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settings.RepsPerStep = ClampReps(n)
	return t.settings.RepsPerStep
}

// SetSpeedStep clamps and applies step, returning the stored value.
func (t *Trainer) SetSpeedStep(step float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settings.SpeedStep = ClampStep(step)
	return t.settings.SpeedStep
}

// SetTargetSpeed clamps and applies target, returning the stored value.
func (t *Trainer) SetTargetSpeed(target float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settings.TargetSpeed = ClampTarget(target)
	return t.settings.TargetSpeed
}

// Progress returns the fraction of reps done toward the next speed-up, in [0, 1].
func (t *Trainer) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Training {
		return 0
	}

	return util.Min(1, float64(t.reps)/float64(t.settings.RepsPerStep))
}

// RepsLeft returns how many reps remain before the next speed-up.
func (t *Trainer) RepsLeft() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return util.Max(0, t.settings.RepsPerStep-t.reps)
}

// OnRep records one loop rep. Its signature matches loop.Controller.OnRep.
func (t *Trainer) OnRep(int) {
	t.mu.Lock()

	if t.state != Training {
		t.mu.Unlock()
		return
	}

	t.reps++
	if t.reps < t.settings.RepsPerStep {
		t.mu.Unlock()
		return
	}

	events, err := t.speedUp()
	t.mu.Unlock()

	if err != nil {
		log.Debugf("trainer: speed-up skipped: %s", err)
	}

	for _, e := range events {
		t.publisher.Publish(e)
	}
}

// speedUp must be called with t.mu held. On a player error the counters are kept so the next rep retries.
func (t *Trainer) speedUp() ([]event.Event, error) {
	current, err := t.handle.Rate()
	if err != nil {
		return nil, fmt.Errorf("read rate: %w", err)
	}

	target := t.settings.TargetSpeed
	next := util.Round(util.Min(target, current+t.settings.SpeedStep), 2)

	var events []event.Event
	if next > current {
		if err := t.handle.SetRate(next); err != nil {
			return nil, fmt.Errorf("set rate: %w", err)
		}

		t.reps = 0
		events = append(events,
			event.Event{Kind: event.SpeedChanged, Data: map[string]any{"speed": next, "source": "progressive"}},
			event.Event{Kind: event.ProgressiveSpeedUp, Data: map[string]any{"speed": next, "target": target}},
		)
	}

	if next >= target {
		t.state = Complete
		events = append(events, event.Event{Kind: event.ProgressiveTargetReached, Data: map[string]any{"target": target}})
	}

	return events, nil
}
