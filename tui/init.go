package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (b *statefulBubble) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(), b.waitForEvent(), b.loadLibrary(), b.spinnerC.Tick}

	if video, ok := b.options.Video.Get(); ok {
		cmds = append(cmds, b.openVideo(video))
	}

	return tea.Batch(cmds...)
}
