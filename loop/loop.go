// Package loop repeats an A/B region of the playing video and counts repetitions.
package loop

import (
	"sync"
	"time"

	"github.com/reprise-cli/reprise/clock"
	"github.com/reprise-cli/reprise/event"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/playback"
	"github.com/samber/mo"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultRepSpacing   = 500 * time.Millisecond
)

// Options tunes a Controller. Zero values fall back to the defaults.
type Options struct {
	// PollInterval is the boundary check period. A negative interval disables the
	// background poll and leaves Tick to the caller.
	PollInterval time.Duration
	// RepSpacing is the minimum wall time between two counted reps.
	RepSpacing time.Duration
	Publisher  event.Publisher
}

// Controller watches the playback position and seeks back to the region start at the region end.
type Controller struct {
	mu     sync.Mutex
	handle playback.Handle
	wall   clock.Wall
	opts   Options

	region     Region
	enabled    bool
	lastSeekAt time.Time
	repCount   int

	listeners []func(reps int)
	stop      chan struct{}
}

// New returns a disabled controller with an empty region.
func New(handle playback.Handle, wall clock.Wall, opts Options) *Controller {
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}

	if opts.RepSpacing <= 0 {
		opts.RepSpacing = DefaultRepSpacing
	}

	if opts.Publisher == nil {
		opts.Publisher = event.Discard{}
	}

	return &Controller{
		handle: handle,
		wall:   wall,
		opts:   opts,
	}
}

// OnRep registers fn to be called with the total rep count after every counted rep.
func (c *Controller) OnRep(fn func(reps int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// SetStart marks the current position as the region start.
func (c *Controller) SetStart() (float64, error) {
	return c.mark(func(r *Region, t float64) { r.Start = mo.Some(t) })
}

// SetEnd marks the current position as the region end.
func (c *Controller) SetEnd() (float64, error) {
	return c.mark(func(r *Region, t float64) { r.End = mo.Some(t) })
}

func (c *Controller) mark(apply func(*Region, float64)) (float64, error) {
	t, err := c.handle.CurrentTime()
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	apply(&c.region, t)
	disabled := c.disableIfInvalid()
	c.mu.Unlock()

	if disabled {
		c.opts.Publisher.Publish(event.Event{Kind: event.LoopDisabled})
	}

	return t, nil
}

// SetRegion replaces both bounds.
func (c *Controller) SetRegion(region Region) {
	c.mu.Lock()
	c.region = region
	disabled := c.disableIfInvalid()
	c.mu.Unlock()

	if disabled {
		c.opts.Publisher.Publish(event.Event{Kind: event.LoopDisabled})
	}
}

// disableIfInvalid turns an enabled loop off when its region no longer allows it.
func (c *Controller) disableIfInvalid() bool {
	if c.enabled && !c.region.CanEnable() {
		c.enabled = false
		c.stopPoll()
		return true
	}

	return false
}

// Region returns the current region.
func (c *Controller) Region() Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region
}

// CanEnable reports whether the current region can be looped.
func (c *Controller) CanEnable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.region.CanEnable()
}

// Enabled reports whether the loop is active.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Reps returns the number of counted reps since the last Clear.
func (c *Controller) Reps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repCount
}

// Toggle flips the loop on or off and returns the new state.
// Enabling requires a valid region; otherwise nothing changes.
func (c *Controller) Toggle() bool {
	c.mu.Lock()

	var kind event.Kind
	switch {
	case c.enabled:
		c.enabled = false
		c.stopPoll()
		kind = event.LoopDisabled
	case c.region.CanEnable():
		c.enabled = true
		c.startPoll()
		kind = event.LoopEnabled
	default:
		c.mu.Unlock()
		return false
	}

	enabled := c.enabled
	region := c.region
	c.mu.Unlock()

	data := map[string]any{}
	if enabled {
		data["start"] = region.Start.MustGet()
		data["end"] = region.End.MustGet()
		data["duration"] = region.Length()
	}
	c.opts.Publisher.Publish(event.Event{Kind: kind, Data: data})

	return enabled
}

// Clear removes the region, disables the loop and resets the rep count.
func (c *Controller) Clear() {
	c.mu.Lock()
	wasEnabled := c.enabled
	c.region = Region{}
	c.enabled = false
	c.repCount = 0
	c.stopPoll()
	c.mu.Unlock()

	if wasEnabled {
		c.opts.Publisher.Publish(event.Event{Kind: event.LoopDisabled})
	}
}

// Tick runs one boundary check.
func (c *Controller) Tick() {
	c.mu.Lock()
	reps, counted := c.tick()
	listeners := c.listeners
	c.mu.Unlock()

	if !counted {
		return
	}

	c.opts.Publisher.Publish(event.Event{Kind: event.RepCounted, Data: map[string]any{"reps": reps}})
	for _, fn := range listeners {
		fn(reps)
	}
}

func (c *Controller) tick() (int, bool) {
	if !c.enabled || !c.region.CanEnable() {
		return 0, false
	}

	start, end := c.region.Start.MustGet(), c.region.End.MustGet()

	t, err := c.handle.CurrentTime()
	if err != nil {
		log.Debugf("loop: skipping tick: %s", err)
		return 0, false
	}

	if t < end {
		return 0, false
	}

	if err := c.handle.SeekTo(start, true); err != nil {
		log.Debugf("loop: seek back failed: %s", err)
		return 0, false
	}

	now := c.wall.Now()
	counted := now.Sub(c.lastSeekAt) > c.opts.RepSpacing
	if counted {
		c.repCount++
	}
	c.lastSeekAt = now

	return c.repCount, counted
}

// startPoll must be called with c.mu held.
func (c *Controller) startPoll() {
	if c.stop != nil || c.opts.PollInterval < 0 {
		return
	}

	stop := make(chan struct{})
	c.stop = stop

	go func() {
		ticker := time.NewTicker(c.opts.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.Tick()
			}
		}
	}()
}

// stopPoll must be called with c.mu held.
func (c *Controller) stopPoll() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// Stop ends the boundary poll without changing the loop state. It is safe to call repeatedly.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopPoll()
}
