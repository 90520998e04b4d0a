package playback

// tracker folds mpv property changes into a State.
type tracker struct {
	paused bool
	eof    bool
	idle   bool
	state  State
}

// observe applies a property change and reports whether the derived state changed.
func (t *tracker) observe(name string, data any) (State, bool) {
	switch name {
	case "pause":
		t.paused, _ = data.(bool)
	case "eof-reached":
		t.eof, _ = data.(bool)
	case "idle-active":
		t.idle, _ = data.(bool)
	case "end-file":
		if event, ok := data.(map[string]any); ok && event["reason"] == "eof" {
			t.eof = true
		}
	case "file-loaded":
		t.eof = false
		t.idle = false
	default:
		return t.state, false
	}

	var next State
	switch {
	case t.eof:
		next = Ended
	case t.idle:
		next = Other
	case t.paused:
		next = Paused
	default:
		next = Playing
	}

	if next == t.state {
		return next, false
	}

	t.state = next
	return next, true
}
