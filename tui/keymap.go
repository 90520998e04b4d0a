package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/style"
)

// statefulKeymap defines the keyboard interactions available within various application states.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	confirm, play,
	add, remove, openURL,
	back, filter,
	up, down, left, right,
	top, bottom,
	playPause, seekBack, seekForward, seekPercent,
	markStart, markEnd, toggleLoop, clearLoop,
	slower, faster, resetSpeed, progressive,
	progressiveSettings,
	metronome, tap, bpmUp, bpmDown, signature, volumeUp, volumeDown,
	savePreset, presets, share,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		play: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp(style.Fg(color.Orange)("enter"), style.Fg(color.Orange)("practice")),
		),
		add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a", "add video"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		openURL: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "left"),
		),
		right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "right"),
		),
		top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		seekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "rewind"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "forward"),
		),
		seekPercent: key.NewBinding(
			key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("0-9", "jump"),
		),
		markStart: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "loop start"),
		),
		markEnd: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "loop end"),
		),
		toggleLoop: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp(style.Fg(color.Orange)("l"), style.Fg(color.Orange)("loop")),
		),
		clearLoop: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear loop"),
		),
		slower: key.NewBinding(
			key.WithKeys("[", "down"),
			key.WithHelp("[", "slower"),
		),
		faster: key.NewBinding(
			key.WithKeys("]", "up"),
			key.WithHelp("]", "faster"),
		),
		resetSpeed: key.NewBinding(
			key.WithKeys("\\"),
			key.WithHelp("\\", "normal speed"),
		),
		progressive: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "progressive"),
		),
		progressiveSettings: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "progressive settings"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("V"),
			key.WithHelp("V", "louder"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "quieter"),
		),
		metronome: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "metronome"),
		),
		tap: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tap tempo"),
		),
		bpmUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "bpm up"),
		),
		bpmDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "bpm down"),
		),
		signature: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "time signature"),
		),
		savePreset: key.NewBinding(
			key.WithKeys("S", "ctrl+s"),
			key.WithHelp("S", "save loop"),
		),
		presets: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "saved loops"),
		),
		share: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy share link"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.forceQuit, k.back))
	case libraryState:
		return h(k.play, k.add, k.remove), h(k.play, k.add, k.remove, k.openURL, k.filter)
	case inputState:
		return to2(h(k.confirm, k.back))
	case practiceState:
		return h(k.playPause, k.markStart, k.markEnd, k.toggleLoop, k.slower, k.faster, k.metronome, k.showHelp),
			h(k.playPause, k.seekBack, k.seekForward, k.seekPercent,
				k.markStart, k.markEnd, k.toggleLoop, k.clearLoop,
				k.slower, k.faster, k.resetSpeed, k.progressive, k.progressiveSettings,
				k.metronome, k.tap, k.bpmUp, k.bpmDown, k.signature, k.volumeUp, k.volumeDown,
				k.savePreset, k.presets, k.share, k.back, k.quit)
	case presetsState:
		return to2(h(withDescription(k.confirm, "load"), k.remove, k.back))
	case errorState:
		return to2(h(k.back, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()

	// columns of six
	var columns [][]key.Binding
	for i := 0; i < len(full); i += 6 {
		columns = append(columns, full[i:min(i+6, len(full))])
	}
	return columns
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		NextPage:             k.right,
		PrevPage:             k.left,
		GoToStart:            k.top,
		GoToEnd:              k.bottom,
		Filter:               k.filter,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		AcceptWhileFiltering: k.confirm,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		Quit:                 k.quit,
		ForceQuit:            k.forceQuit,
	}
}

func withDescription(k key.Binding, description string) key.Binding {
	return key.NewBinding(
		key.WithKeys(k.Keys()...),
		key.WithHelp(k.Help().Key, description),
	)
}
