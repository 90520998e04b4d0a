// Package share encodes a practice setup (video, loop and speed) into a link and back.
package share

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	MinSpeed = 0.25
	MaxSpeed = 2.0
)

// Query parameter names.
const (
	ParamVideo = "v"
	ParamStart = "start"
	ParamEnd   = "end"
	ParamSpeed = "speed"
)

// Link is a shared practice setup.
type Link struct {
	VideoID string
	Start   mo.Option[float64]
	End     mo.Option[float64]
	Speed   mo.Option[float64]
}

// HasLoop reports whether the link carries a usable loop region.
func (l Link) HasLoop() bool {
	start, okStart := l.Start.Get()
	end, okEnd := l.End.Get()
	return okStart && okEnd && start < end
}

// Build returns base with the link encoded in its query.
// Loop bounds are rounded to a tenth of a second and a speed of 1 is omitted.
func Build(base string, link Link) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("share: invalid base url: %w", err)
	}

	q := u.Query()
	q.Set(ParamVideo, link.VideoID)

	if start, ok := link.Start.Get(); ok {
		q.Set(ParamStart, formatFloat(util.Round(start, 1)))
	}

	if end, ok := link.End.Get(); ok {
		q.Set(ParamEnd, formatFloat(util.Round(end, 1)))
	}

	if speed, ok := link.Speed.Get(); ok && speed != 1 {
		q.Set(ParamSpeed, formatFloat(speed))
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Parse decodes a link. Any YouTube URL or bare video ID is accepted;
// the loop and speed parameters are optional. Speeds are clamped into range
// and a loop whose start is not before its end is dropped.
func Parse(raw string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		u = &url.URL{}
	}

	q := u.Query()

	// links built on a custom base carry the ID only in the query
	id, err := library.ExtractID(q.Get(ParamVideo))
	if err != nil {
		if id, err = library.ExtractID(raw); err != nil {
			return Link{}, err
		}
	}

	link := Link{VideoID: id}
	link.Start = parseFloat(q.Get(ParamStart))
	link.End = parseFloat(q.Get(ParamEnd))
	link.Speed = parseFloat(q.Get(ParamSpeed)).Map(func(speed float64) (float64, bool) {
		return lo.Clamp(speed, MinSpeed, MaxSpeed), true
	})

	start, okStart := link.Start.Get()
	end, okEnd := link.End.Get()
	if okStart && okEnd && start >= end {
		link.Start = mo.None[float64]()
		link.End = mo.None[float64]()
	}

	return link, nil
}

// IsLink reports whether raw carries any loop or speed parameter.
func IsLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	q := u.Query()
	return lo.SomeBy([]string{ParamStart, ParamEnd, ParamSpeed}, q.Has)
}

func parseFloat(s string) mo.Option[float64] {
	if s == "" {
		return mo.None[float64]()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return mo.None[float64]()
	}

	return mo.Some(f)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
