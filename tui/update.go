package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reprise-cli/reprise/event"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/metronome"
	"github.com/reprise-cli/reprise/open"
	"github.com/reprise-cli/reprise/preset"
	"github.com/reprise-cli/reprise/trainer"
	"github.com/reprise-cli/reprise/util"
)

const (
	// speedStep is the change applied by the slower and faster keys.
	speedStep = 0.05
	// volumeStep is the change applied by the louder and quieter keys.
	volumeStep = 0.1
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if cmd := b.notifier.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case error:
		b.stopLoading()
		b.raiseError(msg)
		return b, tea.Batch(cmds...)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tickMsg:
		return b, tea.Batch(append(cmds, tick())...)
	case eventMsg:
		if text, ok := describeEvent(event.Event(msg)); ok {
			cmds = append(cmds, b.notify(text))
		}
		return b, tea.Batch(append(cmds, b.waitForEvent())...)
	case videoOpenedMsg:
		b.stopLoading()
		b.setState(practiceState)
		return b, tea.Batch(append(cmds, b.waitForPlayerExit(), b.loadLibrary())...)
	case playerExitedMsg:
		b.watched = nil
		b.session.Timer.OnPausedOrEnded()
		b.session.Loop.Stop()

		if b.state == practiceState || b.state == presetsState {
			b.statesHistory.Clear()
			b.setState(libraryState)
			cmds = append(cmds, b.notify("Player closed"))
		}
		return b, tea.Batch(append(cmds, b.loadLibrary())...)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	}

	var (
		model tea.Model
		cmd   tea.Cmd
	)

	switch b.state {
	case loadingState:
		model, cmd = b.updateLoading(msg)
	case libraryState:
		model, cmd = b.updateLibrary(msg)
	case inputState:
		model, cmd = b.updateInput(msg)
	case practiceState:
		model, cmd = b.updatePractice(msg)
	case presetsState:
		model, cmd = b.updatePresets(msg)
	case errorState:
		model, cmd = b.updateError(msg)
	default:
		model = b
	}

	return model, tea.Batch(append(cmds, cmd)...)
}

func (b *statefulBubble) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.back) {
		if b.statesHistory.Len() == 0 {
			return b, tea.Quit
		}
		b.stopLoading()
		b.previousState()
		return b, nil
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateLibrary(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && b.libraryC.FilterState() != list.Filtering {
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.libraryC.Items()); n > 0 && b.libraryC.Index() == 0 {
				b.libraryC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.libraryC.Items()); n > 0 && b.libraryC.Index() == n-1 {
				b.libraryC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.add):
			return b, b.startInput(addVideoInput)
		case bubblesKey.Matches(msg, b.keymap.remove):
			if video, ok := b.selectedVideo(); ok {
				if err := b.session.Library.Remove(video.ID); err != nil {
					b.raiseError(err)
					return b, nil
				}
				return b, tea.Batch(b.loadLibrary(), b.libraryC.NewStatusMessage("Removed "+video.Name()))
			}
		case bubblesKey.Matches(msg, b.keymap.openURL):
			if video, ok := b.selectedVideo(); ok {
				if err := open.Start(video.URL()); err != nil {
					b.raiseError(err)
				}
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.play):
			if video, ok := b.selectedVideo(); ok {
				if current, opened := b.session.Video(); opened && current.ID == video.ID && b.watched != nil {
					b.newState(practiceState)
					return b, nil
				}

				b.newState(loadingState)
				return b, b.openVideo(video)
			}
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.libraryC.FilterState() == list.Unfiltered && b.watched != nil {
				b.newState(practiceState)
				return b, nil
			}
		}
	}

	b.libraryC, cmd = b.libraryC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) selectedVideo() (library.Video, bool) {
	item, ok := b.libraryC.SelectedItem().(*listItem)
	if !ok {
		return library.Video{}, false
	}

	video, ok := item.internal.(library.Video)
	return video, ok
}

func (b *statefulBubble) startInput(purpose inputPurpose) tea.Cmd {
	b.inputPurpose = purpose
	b.inputC.SetValue("")

	switch purpose {
	case addVideoInput:
		b.inputC.Prompt = "Video: "
		b.inputC.Placeholder = "YouTube URL or video ID"
	case presetNameInput:
		b.inputC.Prompt = "Name: "
		b.inputC.Placeholder = fmt.Sprintf("Loop %d", b.presetCount()+1)
	case progressiveInput:
		settings := b.session.Trainer.Settings()
		b.inputC.Prompt = "Reps, step, target: "
		b.inputC.Placeholder = fmt.Sprintf("%d %.2f %.2f", settings.RepsPerStep, settings.SpeedStep, settings.TargetSpeed)
	}

	b.newState(inputState)
	return tea.Batch(b.inputC.Focus(), textinput.Blink)
}

func (b *statefulBubble) presetCount() int {
	video, ok := b.session.Video()
	if !ok {
		return 0
	}
	return len(b.session.Presets.List(video.ID))
}

func (b *statefulBubble) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			value := strings.TrimSpace(b.inputC.Value())
			b.inputC.Blur()
			b.previousState()
			return b, b.submitInput(value)
		case tea.KeyEsc:
			b.inputC.Blur()
			b.previousState()
			return b, nil
		}
	}

	b.inputC, cmd = b.inputC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) submitInput(value string) tea.Cmd {
	switch b.inputPurpose {
	case addVideoInput:
		if value == "" {
			return nil
		}

		video, err := b.session.Library.Add(value, "")
		if err != nil && !errors.Is(err, library.ErrExists) {
			return b.notify(err.Error())
		}

		b.newState(loadingState)
		return tea.Batch(b.loadLibrary(), b.openVideo(video))
	case presetNameInput:
		p, err := b.session.SavePreset(value)
		if err != nil {
			return b.notify(err.Error())
		}
		return b.notify(fmt.Sprintf("Saved %q", p.Name))
	case progressiveInput:
		if value == "" {
			return nil
		}

		settings, err := b.applyProgressive(value)
		if err != nil {
			return b.notify(err.Error())
		}
		return b.notify(fmt.Sprintf("%d reps per step, +%.2fx up to %.2fx", settings.RepsPerStep, settings.SpeedStep, settings.TargetSpeed))
	}

	return nil
}

// applyProgressive reads up to three fields, reps per step, speed step and target
// speed, separated by spaces or commas. A "-" keeps the current value.
func (b *statefulBubble) applyProgressive(value string) (trainer.Settings, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(fields) > 3 {
		return trainer.Settings{}, fmt.Errorf("expected at most 3 values, got %d", len(fields))
	}

	t := b.session.Trainer
	setters := []func(string) error{
		func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("reps per step: %q is not a whole number", s)
			}
			t.SetRepsPerStep(n)
			return nil
		},
		func(s string) error {
			f, err := strconv.ParseFloat(strings.TrimSuffix(s, "x"), 64)
			if err != nil {
				return fmt.Errorf("speed step: %q is not a number", s)
			}
			t.SetSpeedStep(f)
			return nil
		},
		func(s string) error {
			f, err := strconv.ParseFloat(strings.TrimSuffix(s, "x"), 64)
			if err != nil {
				return fmt.Errorf("target speed: %q is not a number", s)
			}
			t.SetTargetSpeed(f)
			return nil
		},
	}

	for i, field := range fields {
		if field == "-" {
			continue
		}
		if err := setters[i](field); err != nil {
			return t.Settings(), err
		}
	}

	return t.Settings(), nil
}

func (b *statefulBubble) notifyVolume(volume float64) tea.Cmd {
	return b.notify(fmt.Sprintf("Volume %.0f%%", volume*100))
}

func (b *statefulBubble) updatePractice(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	var (
		s   = b.session
		k   = b.keymap
		err error
		cmd tea.Cmd
	)

	switch {
	case bubblesKey.Matches(key, k.quit):
		return b, tea.Quit
	case bubblesKey.Matches(key, k.back):
		b.newState(libraryState)
		return b, b.loadLibrary()
	case bubblesKey.Matches(key, k.playPause):
		err = s.TogglePause()
	case bubblesKey.Matches(key, k.seekBack):
		err = s.Nudge(-s.Options().SeekStep)
	case bubblesKey.Matches(key, k.seekForward):
		err = s.Nudge(s.Options().SeekStep)
	case bubblesKey.Matches(key, k.seekPercent):
		err = s.SeekPercent(float64(key.String()[0]-'0') / 10)
	case bubblesKey.Matches(key, k.markStart):
		_, err = s.Loop.SetStart()
	case bubblesKey.Matches(key, k.markEnd):
		_, err = s.Loop.SetEnd()
	case bubblesKey.Matches(key, k.toggleLoop):
		if !s.Loop.CanEnable() {
			cmd = b.notify("Set a loop start before its end")
			break
		}
		s.Loop.Toggle()
	case bubblesKey.Matches(key, k.clearLoop):
		s.Loop.Clear()
	case bubblesKey.Matches(key, k.slower):
		_, err = s.SetSpeed(util.Round(s.Speed()-speedStep, 2))
	case bubblesKey.Matches(key, k.faster):
		_, err = s.SetSpeed(util.Round(s.Speed()+speedStep, 2))
	case bubblesKey.Matches(key, k.resetSpeed):
		_, err = s.SetSpeed(1)
	case bubblesKey.Matches(key, k.progressive):
		if s.Trainer.Toggle() {
			cmd = b.notify("Progressive training on")
		} else {
			cmd = b.notify("Progressive training off")
		}
	case bubblesKey.Matches(key, k.progressiveSettings):
		cmd = b.startInput(progressiveInput)
	case bubblesKey.Matches(key, k.metronome):
		s.Metronome.Toggle()
	case bubblesKey.Matches(key, k.tap):
		if bpm, ok := s.Metronome.Tap(); ok {
			cmd = b.notify(fmt.Sprintf("%d BPM", bpm))
		}
	case bubblesKey.Matches(key, k.bpmUp):
		s.Metronome.SetBPM(s.Metronome.BPM() + 1)
	case bubblesKey.Matches(key, k.bpmDown):
		s.Metronome.SetBPM(s.Metronome.BPM() - 1)
	case bubblesKey.Matches(key, k.signature):
		s.Metronome.SetTimeSignature(metronome.NextTimeSignature(s.Metronome.TimeSignature()))
	case bubblesKey.Matches(key, k.volumeUp):
		cmd = b.notifyVolume(s.Metronome.SetVolume(util.Round(s.Metronome.Volume()+volumeStep, 2)))
	case bubblesKey.Matches(key, k.volumeDown):
		cmd = b.notifyVolume(s.Metronome.SetVolume(util.Round(s.Metronome.Volume()-volumeStep, 2)))
	case bubblesKey.Matches(key, k.savePreset):
		if !s.Loop.CanEnable() {
			cmd = b.notify("Set a loop start before its end")
			break
		}
		cmd = b.startInput(presetNameInput)
	case bubblesKey.Matches(key, k.presets):
		b.newState(presetsState)
		cmd = b.loadPresets()
	case bubblesKey.Matches(key, k.share):
		cmd = b.copyShareLink()
	case bubblesKey.Matches(key, k.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}

	if err != nil {
		return b, b.notify(err.Error())
	}

	return b, cmd
}

func (b *statefulBubble) updatePresets(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && b.presetsC.FilterState() != list.Filtering {
		selected, hasSelection := b.selectedPreset()

		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if hasSelection {
				b.previousState()
				if err := b.session.LoadPreset(selected); err != nil {
					return b, b.notify(err.Error())
				}
				return b, b.notify("Loaded " + selected.Name)
			}
		case bubblesKey.Matches(msg, b.keymap.remove):
			if video, ok := b.session.Video(); ok && hasSelection {
				if err := b.session.Presets.Delete(video.ID, selected.ID); err != nil {
					return b, b.notify(err.Error())
				}
				return b, tea.Batch(b.loadPresets(), b.presetsC.NewStatusMessage("Deleted "+selected.Name))
			}
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.presetsC.FilterState() == list.Unfiltered {
				b.previousState()
				return b, nil
			}
		}
	}

	b.presetsC, cmd = b.presetsC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) selectedPreset() (preset.Preset, bool) {
	item, ok := b.presetsC.SelectedItem().(*listItem)
	if !ok {
		return preset.Preset{}, false
	}

	p, ok := item.internal.(preset.Preset)
	return p, ok
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.statesHistory.Len() == 0 {
				b.setState(libraryState)
				return b, nil
			}
			b.previousState()
		}
	}

	return b, nil
}
