package share

import (
	"errors"
	"testing"

	"github.com/reprise-cli/reprise/library"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	base  = "https://www.youtube.com/watch"
	video = "dQw4w9WgXcQ"
)

func TestBuild(t *testing.T) {
	Convey("Given a link with a loop and a speed", t, func() {
		link := Link{
			VideoID: video,
			Start:   mo.Some(10.04),
			End:     mo.Some(15.06),
			Speed:   mo.Some(0.75),
		}

		Convey("Bounds are rounded to a tenth of a second", func() {
			raw, err := Build(base, link)
			So(err, ShouldBeNil)
			So(raw, ShouldEqual, base+"?end=15.1&speed=0.75&start=10&v="+video)
		})

		Convey("It parses back", func() {
			raw, _ := Build(base, link)
			parsed, err := Parse(raw)
			So(err, ShouldBeNil)
			So(parsed.VideoID, ShouldEqual, video)
			So(parsed.Start.MustGet(), ShouldEqual, 10.0)
			So(parsed.End.MustGet(), ShouldEqual, 15.1)
			So(parsed.Speed.MustGet(), ShouldEqual, 0.75)
			So(parsed.HasLoop(), ShouldBeTrue)
		})

		Convey("Normal speed is omitted", func() {
			link.Speed = mo.Some(1.0)
			raw, _ := Build(base, link)
			So(raw, ShouldNotContainSubstring, "speed")
		})

		Convey("A custom base keeps the video in the query", func() {
			raw, err := Build("https://practice.example/app", link)
			So(err, ShouldBeNil)

			parsed, err := Parse(raw)
			So(err, ShouldBeNil)
			So(parsed.VideoID, ShouldEqual, video)
			So(parsed.HasLoop(), ShouldBeTrue)
		})
	})

	Convey("A link without loop only carries the video", t, func() {
		raw, err := Build(base, Link{VideoID: video})
		So(err, ShouldBeNil)
		So(raw, ShouldEqual, base+"?v="+video)
	})
}

func TestParse(t *testing.T) {
	Convey("Speeds are clamped", t, func() {
		fast, _ := Parse(base + "?v=" + video + "&speed=4")
		So(fast.Speed.MustGet(), ShouldEqual, MaxSpeed)

		slow, _ := Parse(base + "?v=" + video + "&speed=0.1")
		So(slow.Speed.MustGet(), ShouldEqual, MinSpeed)
	})

	Convey("An inverted loop keeps only the speed", t, func() {
		link, err := Parse(base + "?v=" + video + "&start=20&end=10&speed=0.5")
		So(err, ShouldBeNil)
		So(link.Start.IsPresent(), ShouldBeFalse)
		So(link.End.IsPresent(), ShouldBeFalse)
		So(link.Speed.MustGet(), ShouldEqual, 0.5)
		So(link.HasLoop(), ShouldBeFalse)
	})

	Convey("Garbage values are ignored", t, func() {
		link, err := Parse(base + "?v=" + video + "&start=abc&speed=NaN")
		So(err, ShouldBeNil)
		So(link.Start.IsPresent(), ShouldBeFalse)
		So(link.Speed.IsPresent(), ShouldBeFalse)
	})

	Convey("A start alone is kept", t, func() {
		link, _ := Parse(base + "?v=" + video + "&start=42")
		So(link.Start.MustGet(), ShouldEqual, 42.0)
		So(link.HasLoop(), ShouldBeFalse)
	})

	Convey("Plain video references parse without settings", t, func() {
		for _, raw := range []string{video, "https://youtu.be/" + video, "https://www.youtube.com/shorts/" + video} {
			link, err := Parse(raw)
			So(err, ShouldBeNil)
			So(link.VideoID, ShouldEqual, video)
			So(IsLink(raw), ShouldBeFalse)
		}
	})

	Convey("Links are told apart from plain videos", t, func() {
		So(IsLink(base+"?v="+video+"&speed=0.5"), ShouldBeTrue)
	})

	Convey("Input without a video is rejected", t, func() {
		_, err := Parse("https://example.com/?start=1")
		So(errors.Is(err, library.ErrInvalidVideo), ShouldBeTrue)
	})
}
