// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/metronome"
	"github.com/reprise-cli/reprise/playback"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/trainer"
	"github.com/reprise-cli/reprise/util"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case libraryState:
		output = b.viewLibrary()
	case inputState:
		output = b.viewInput()
	case practiceState:
		output = b.viewPractice()
	case presetsState:
		output = b.viewPresets()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewLibrary() string {
	return listExtraPaddingStyle.Render(b.libraryC.View())
}

func (b *statefulBubble) viewPresets() string {
	return listExtraPaddingStyle.Render(b.presetsC.View())
}

func (b *statefulBubble) viewInput() string {
	var title string
	switch b.inputPurpose {
	case presetNameInput:
		title = "Save Loop"
	case progressiveInput:
		title = "Progressive Training"
	default:
		title = "Add Video"
	}

	return b.renderLines(
		false,
		[]string{
			style.Title(title),
			"",
			b.inputC.View(),
			"",
			style.Faint("(Enter to confirm, Esc to cancel)"),
		},
	)
}

func (b *statefulBubble) viewPractice() string {
	s := b.session
	truncate := style.Truncate(b.width)

	video, _ := s.Video()
	position, duration := s.Position()
	stats := s.Stats()

	var percent float64
	if duration > 0 {
		percent = position / duration
	}

	lines := []string{
		style.Title("Practice"),
		"",
		truncate(fmt.Sprintf("%s %s", icon.Get(icon.Video), style.Fg(color.Purple)(video.Name()))),
		fmt.Sprintf("%s %s / %s", stateLabel(s.State()), util.Timestamp(position), util.Timestamp(duration)),
		b.positionC.ViewAs(percent),
		"",
		b.loopLine(),
		b.speedLine(stats.CurrentSpeed),
	}

	if s.Trainer.Enabled() || s.Trainer.State() == trainer.Complete {
		lines = append(lines, b.trainerC.ViewAs(s.Trainer.Progress()))
	}

	lines = append(lines,
		b.metronomeLine(),
		"",
		b.practiceLine(stats.SessionSeconds, stats.TodayMinutes, stats.Streak),
	)

	return b.renderLines(true, lines)
}

func stateLabel(state playback.State) string {
	switch state {
	case playback.Playing:
		return style.Fg(style.Green)(icon.Get(icon.Progress) + " playing")
	case playback.Paused:
		return style.Fg(style.Peach)("paused")
	case playback.Ended:
		return style.Faint("ended")
	default:
		return style.Faint(state.String())
	}
}

func (b *statefulBubble) loopLine() string {
	loop := b.session.Loop
	region := loop.Region()

	line := fmt.Sprintf("%s Loop %s", icon.Get(icon.Loop), region)
	if length := region.Length(); length > 0 {
		line += style.Faint(fmt.Sprintf(" (%s)", util.Timestamp(length)))
	}

	if loop.Enabled() {
		line += " " + style.Tag(style.Base, style.Green)("ON")
		line += fmt.Sprintf(" %s %s", icon.Get(icon.Rep), util.Quantify(loop.Reps(), "rep", "reps"))
	} else {
		line += " " + style.Faint("off")
	}

	return line
}

func (b *statefulBubble) speedLine(speed float64) string {
	t := b.session.Trainer
	line := fmt.Sprintf("%s Speed %.2fx", icon.Get(icon.Speed), speed)

	switch t.State() {
	case trainer.Training:
		settings := t.Settings()
		line += style.Faint(fmt.Sprintf(
			" progressive to %.2fx, +%.2fx every %s, %s left",
			settings.TargetSpeed,
			settings.SpeedStep,
			util.Quantify(settings.RepsPerStep, "rep", "reps"),
			util.Quantify(t.RepsLeft(), "rep", "reps"),
		))
	case trainer.Complete:
		line += " " + style.Fg(style.Green)(icon.Get(icon.Success)+" target reached")
	}

	return line
}

func (b *statefulBubble) metronomeLine() string {
	m := b.session.Metronome
	line := fmt.Sprintf("%s %d BPM %s %s", icon.Get(icon.Metronome), m.BPM(), m.TimeSignature(), style.Faint(fmt.Sprintf("vol %.0f%%", m.Volume()*100)))

	if !m.Running() {
		return line + " " + style.Faint("off")
	}

	return line + " " + beatDots(m.TimeSignature(), b.flash.get())
}

// beatDots draws one dot per beat of the measure with the flashing beat lit.
func beatDots(ts metronome.TimeSignature, flash metronome.Flash) string {
	dots := make([]string, ts.Beats)
	for i := range dots {
		switch {
		case flash.On && i == flash.Beat && flash.Downbeat:
			dots[i] = style.Fg(style.Peach)(icon.Get(icon.Downbeat))
		case flash.On && i == flash.Beat:
			dots[i] = style.Fg(style.Blue)(icon.Get(icon.Beat))
		default:
			dots[i] = style.Faint("·")
		}
	}
	return strings.Join(dots, " ")
}

func (b *statefulBubble) practiceLine(sessionSeconds int, todayMinutes float64, streak int) string {
	line := fmt.Sprintf(
		"%s Session %s • today %s",
		icon.Get(icon.Timer),
		util.Timestamp(float64(sessionSeconds)),
		util.Minutes(todayMinutes),
	)

	if b.session.ShowStreak() {
		line += fmt.Sprintf(" • %s %s", style.Fg(style.Peach)(icon.Get(icon.Streak)), fmt.Sprintf("%d day streak", streak))
	}

	return line
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(b.lastError.Error())
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
