package oembed

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/reprise-cli/reprise/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestRequestURL(t *testing.T) {
	Convey("The request URL embeds the watch URL", t, func() {
		u, err := url.Parse(RequestURL("dQw4w9WgXcQ"))
		So(err, ShouldBeNil)
		So(u.Host, ShouldEqual, "www.youtube.com")
		So(u.Query().Get("url"), ShouldEqual, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		So(u.Query().Get("format"), ShouldEqual, "json")
	})
}

func TestTitle(t *testing.T) {
	Convey("Given a client with a stubbed fetcher", t, func() {
		calls := 0
		client := NewWithFetcher(func(_ context.Context, _ string, _ map[string]string) ([]byte, int, error) {
			calls++
			return []byte(`{"title":"Giant Steps","author_name":"Coltrane"}`), 200, nil
		})

		Convey("The title is decoded and then served from cache", func() {
			title, err := client.Title(context.Background(), "ggggggggggg")
			So(err, ShouldBeNil)
			So(title, ShouldEqual, "Giant Steps")

			title, err = client.Title(context.Background(), "ggggggggggg")
			So(err, ShouldBeNil)
			So(title, ShouldEqual, "Giant Steps")
			So(calls, ShouldEqual, 1)
		})
	})

	Convey("Given a video YouTube does not know", t, func() {
		client := NewWithFetcher(func(context.Context, string, map[string]string) ([]byte, int, error) {
			return []byte("Not Found"), 404, nil
		})

		_, err := client.Title(context.Background(), "nnnnnnnnnnn")
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)
	})

	Convey("Given a network failure", t, func() {
		boom := errors.New("offline")
		client := NewWithFetcher(func(context.Context, string, map[string]string) ([]byte, int, error) {
			return nil, 0, boom
		})

		_, err := client.Title(context.Background(), "fffffffffff")
		So(errors.Is(err, boom), ShouldBeTrue)
	})
}
