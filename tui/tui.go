// Package tui provides the terminal practice dashboard.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/session"
	"github.com/reprise-cli/reprise/share"
	"github.com/samber/mo"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Video is opened right away instead of showing the library.
	Video mo.Option[library.Video]
	// Link is applied to Video once it plays.
	Link mo.Option[share.Link]
	BPM  mo.Option[int]
}

// Run executes the Bubble Tea application loop on sess. The session is not closed.
func Run(sess *session.Session, options *Options) error {
	bubble := newBubble(sess, options)
	defer bubble.detach()

	if bpm, ok := options.BPM.Get(); ok {
		sess.Metronome.SetBPM(bpm)
	}

	if _, ok := options.Video.Get(); ok {
		bubble.newState(loadingState)
	} else {
		bubble.newState(libraryState)
	}

	_, err := tea.NewProgram(bubble, tea.WithAltScreen()).Run()
	return err
}
