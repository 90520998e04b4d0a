package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reprise-cli/reprise/event"
	"github.com/reprise-cli/reprise/internal/ui"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/preset"
	"github.com/reprise-cli/reprise/share"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// frameInterval is the dashboard refresh period.
const frameInterval = 100 * time.Millisecond

type (
	tickMsg         time.Time
	eventMsg        event.Event
	videoOpenedMsg  library.Video
	playerExitedMsg struct{}
)

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (b *statefulBubble) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-b.events)
	}
}

// waitForPlayerExit watches the current player process once. mpv is reused across
// videos, so reopening does not start a second watcher.
func (b *statefulBubble) waitForPlayerExit() tea.Cmd {
	done := b.session.Done()
	if done == b.watched {
		return nil
	}
	b.watched = done

	return func() tea.Msg {
		<-done
		return playerExitedMsg{}
	}
}

func (b *statefulBubble) loadLibrary() tea.Cmd {
	videos := b.session.Library.List()
	current, _ := b.session.Video()

	items := make([]list.Item, len(videos))
	for i, v := range videos {
		items[i] = &listItem{
			internal: v,
			loops:    len(b.session.Presets.List(v.ID)),
			current:  v.ID == current.ID,
		}
	}

	return b.libraryC.SetItems(items)
}

func (b *statefulBubble) loadPresets() tea.Cmd {
	video, ok := b.session.Video()
	if !ok {
		return b.presetsC.SetItems(nil)
	}

	presets := b.session.Presets.List(video.ID)
	return b.presetsC.SetItems(lo.Map(presets, func(p preset.Preset, _ int) list.Item {
		return &listItem{internal: p}
	}))
}

// openVideo starts playback and applies the link given on the command line once.
func (b *statefulBubble) openVideo(video library.Video) tea.Cmd {
	b.startLoading(fmt.Sprintf("Opening %s...", video.Name()))

	link, hasLink := b.options.Link.Get()
	b.options.Link = mo.None[share.Link]()

	return func() tea.Msg {
		if err := b.session.Open(context.Background(), video); err != nil {
			return err
		}

		if hasLink && link.VideoID == video.ID {
			if err := b.session.ApplyLink(link); err != nil {
				log.Warnf("tui: applying link: %s", err)
			}
		}

		return videoOpenedMsg(video)
	}
}

func (b *statefulBubble) copyShareLink() tea.Cmd {
	link, err := b.session.ShareLink()
	if err != nil {
		return b.notify(err.Error())
	}

	if err := clipboard.WriteAll(link); err != nil {
		log.Warnf("tui: clipboard: %s", err)
		return b.notify(link)
	}

	return b.notify("Share link copied")
}

func (b *statefulBubble) notify(text string) tea.Cmd {
	return b.notifier.Update(ui.NotificationMsg(text))
}

// describeEvent returns the notification text for e, or false when e is silent.
func describeEvent(e event.Event) (string, bool) {
	switch e.Kind {
	case event.ProgressiveSpeedUp:
		return fmt.Sprintf("Speed up! Now at %.2fx", e.Float("speed")), true
	case event.ProgressiveTargetReached:
		return "Target speed reached!", true
	case event.LoopEnabled:
		return "Loop on", true
	case event.LoopDisabled:
		return "Loop off", true
	default:
		return "", false
	}
}
