package preset

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/reprise-cli/reprise/loop"
	"github.com/reprise-cli/reprise/store"
	. "github.com/smartystreets/goconvey/convey"
)

const video = "vvvvvvvvvvv"

func newBook() *Book {
	b := New(store.NewMemory())
	b.now = func() time.Time { return time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC) }
	return b
}

func TestBook(t *testing.T) {
	Convey("Given an empty book", t, func() {
		b := newBook()

		Convey("Unnamed loops are numbered", func() {
			first, err := b.Save(video, "", 10, 20)
			So(err, ShouldBeNil)
			So(first.Name, ShouldEqual, "Loop 1")
			So(first.ID, ShouldNotBeEmpty)

			second, err := b.Save(video, "", 30, 40)
			So(err, ShouldBeNil)
			So(second.Name, ShouldEqual, "Loop 2")

			So(b.List(video), ShouldHaveLength, 2)
			So(b.Count(video, "other"), ShouldEqual, 2)
		})

		Convey("Invalid regions are rejected", func() {
			_, err := b.Save(video, "x", 20, 10)
			So(errors.Is(err, ErrInvalidRegion), ShouldBeTrue)
			_, err = b.Save(video, "x", 10, 10)
			So(errors.Is(err, ErrInvalidRegion), ShouldBeTrue)
			So(b.List(video), ShouldBeEmpty)
		})

		Convey("With named loops", func() {
			intro, _ := b.Save(video, "Intro riff", 0, 12.5)
			_, _ = b.Save(video, "Guitar solo", 95, 120)
			_, _ = b.Save(video, "Outro", 200, 230)

			Convey("A preset converts to a loop region", func() {
				So(intro.Region(), ShouldResemble, loop.NewRegion(0, 12.5))
				So(intro.Length(), ShouldEqual, 12.5)
			})

			Convey("Find ranks fuzzy matches", func() {
				found := b.Find(video, "solo")
				So(found, ShouldHaveLength, 1)
				So(found[0].Name, ShouldEqual, "Guitar solo")

				found = b.Find(video, "o")
				So(len(found), ShouldEqual, 3)
				So(found[0].Name, ShouldEqual, "Outro")
			})

			Convey("Get and Delete use the ID", func() {
				got, err := b.Get(video, intro.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Intro riff")

				So(b.Delete(video, intro.ID), ShouldBeNil)
				So(errors.Is(b.Delete(video, intro.ID), ErrNotFound), ShouldBeTrue)
				_, err = b.Get(video, intro.ID)
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(b.List(video), ShouldHaveLength, 2)
			})

			Convey("Loops of other videos are separate", func() {
				So(b.List("ooooooooooo"), ShouldBeEmpty)
			})

			Convey("Exported loops import into another video", func() {
				var buf bytes.Buffer
				So(b.Export(&buf, video), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, `video = "vvvvvvvvvvv"`)
				So(buf.String(), ShouldContainSubstring, "[[loop]]")

				n, err := b.Import(&buf, "ooooooooooo")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
				So(b.List("ooooooooooo"), ShouldResemble, b.List(video))
			})
		})

		Convey("Imports skip invalid loops and fill in the blanks", func() {
			doc := `
video = "x"

[[loop]]
name = "Good"
start = 1.0
end = 2.0

[[loop]]
name = "Backwards"
start = 5.0
end = 2.0

[[loop]]
start = 3.0
end = 4.0
`
			n, err := b.Import(strings.NewReader(doc), video)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			presets := b.List(video)
			So(presets[0].Name, ShouldEqual, "Good")
			So(presets[0].ID, ShouldNotBeEmpty)
			So(presets[1].Name, ShouldEqual, "Loop 2")
		})

		Convey("Malformed TOML is an error", func() {
			_, err := b.Import(strings.NewReader("[[loop"), video)
			So(err, ShouldNotBeNil)
		})
	})
}
