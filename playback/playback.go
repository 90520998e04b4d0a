// Package playback drives the external video player.
// The primary backend is mpv, controlled over its JSON-IPC socket. Fake is an in-memory handle.
package playback

import "errors"

// State is the coarse playback state reported to subscribers.
type State int

const (
	Other State = iota
	Playing
	Paused
	Ended
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return "other"
	}
}

// ErrNotLoaded is returned when no media is loaded yet.
var ErrNotLoaded = errors.New("playback: nothing loaded")

// Handle is the command and query surface of a player.
// Every call may fail transiently; callers skip and retry on the next tick.
type Handle interface {
	// CurrentTime returns the playback position in seconds.
	CurrentTime() (float64, error)

	// Duration returns the media length in seconds.
	Duration() (float64, error)

	// SeekTo moves to an absolute position. allowSeekAhead permits a fast, less exact seek.
	SeekTo(seconds float64, allowSeekAhead bool) error

	Play() error
	Pause() error

	// SetRate sets the playback speed multiplier.
	SetRate(rate float64) error

	// Rate returns the playback speed multiplier.
	Rate() (float64, error)

	// Subscribe registers fn for state changes. The returned function removes it.
	Subscribe(fn func(State)) (unsubscribe func())
}

// Player is a Handle whose media and process lifetime can be managed.
type Player interface {
	Handle

	// Load starts playback of url, reusing a running player when there is one.
	Load(url, title string) error

	// Wait returns a channel closed when the player exits.
	Wait() <-chan struct{}

	// Close terminates the player and releases its resources.
	Close() error
}
