package library

import (
	"errors"
	"regexp"
	"strings"

	"github.com/reprise-cli/reprise/util"
)

// ErrInvalidVideo is returned for input that holds no YouTube video ID.
var ErrInvalidVideo = errors.New("invalid YouTube URL or video ID")

var (
	urlPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|live/|v/)|youtu\.be/)(?P<id>[A-Za-z0-9_-]{11})(?:$|[^A-Za-z0-9_-])`)
	idPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractID returns the video ID from a YouTube URL (watch, youtu.be, embed, shorts, live,
// music.youtube.com) or a bare 11-character ID.
func ExtractID(input string) (string, error) {
	input = strings.TrimSpace(input)

	if idPattern.MatchString(input) {
		return input, nil
	}

	if id, ok := util.ReGroups(urlPattern, input)["id"]; ok {
		return id, nil
	}

	return "", ErrInvalidVideo
}

// URL returns the watch URL for a video ID.
func URL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
