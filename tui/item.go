package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/preset"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/util"
)

// titleWidth bounds list titles so long video names stay on one line.
const titleWidth = 60

// listItem implements list.Item for videos and saved loops.
type listItem struct {
	internal any
	// loops is the number of saved loops of a video.
	loops int
	// current marks the video that is open.
	current bool
}

func (t *listItem) Title() string {
	var title string

	switch e := t.internal.(type) {
	case library.Video:
		title = runewidth.Truncate(e.Name(), titleWidth, "…")
	case preset.Preset:
		title = runewidth.Truncate(e.Name, titleWidth, "…")
	default:
		title = t.FilterValue()
	}

	if t.current {
		title = fmt.Sprintf("%s %s", title, style.Fg(style.AccentColor)(icon.Get(icon.Video)))
	}

	return title
}

func (t *listItem) Description() string {
	switch e := t.internal.(type) {
	case library.Video:
		parts := []string{"added " + humanize.Time(e.AddedAt)}
		if t.loops > 0 {
			parts = append(parts, util.Quantify(t.loops, "saved loop", "saved loops"))
		}
		if e.Title != "" {
			parts = append(parts, e.ID)
		}
		return strings.Join(parts, " • ")
	case preset.Preset:
		return fmt.Sprintf("%s • %s • saved %s", e.Region(), util.Timestamp(e.Length()), humanize.Time(e.SavedAt))
	default:
		return ""
	}
}

func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case library.Video:
		return e.Title + " " + e.ID
	case preset.Preset:
		return e.Name
	default:
		return ""
	}
}
