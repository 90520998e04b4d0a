package util

import (
	"math"
	"regexp"
	"testing"

	"github.com/reprise-cli/reprise/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		So(SanitizeFilename("file:name?.txt"), ShouldEqual, "file_name_.txt")
		So(SanitizeFilename("file__name.txt"), ShouldEqual, "file_name.txt")
		So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "rep", "reps"), ShouldEqual, "1 rep")
		So(Quantify(2, "rep", "reps"), ShouldEqual, "2 reps")
	})
}

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		re := regexp.MustCompile(`(?P<first>\w+)\s(?P<last>\w+)`)
		groups := ReGroups(re, "John Doe")
		So(groups["first"], ShouldEqual, "John")
		So(groups["last"], ShouldEqual, "Doe")
		So(ReGroups(re, "-"), ShouldBeEmpty)
	})
}

func TestRound(t *testing.T) {
	Convey("Round", t, func() {
		So(Round(0.1+0.2, 2), ShouldEqual, 0.3)
		So(Round(15.06, 1), ShouldEqual, 15.1)
	})
}

func TestTimestamp(t *testing.T) {
	Convey("Timestamp", t, func() {
		So(Timestamp(0), ShouldEqual, "0:00")
		So(Timestamp(math.NaN()), ShouldEqual, "0:00")
		So(Timestamp(65.9), ShouldEqual, "1:05")
		So(Timestamp(600), ShouldEqual, "10:00")
	})
}

func TestMinutes(t *testing.T) {
	Convey("Minutes", t, func() {
		So(Minutes(12.4), ShouldEqual, "12m")
		So(Minutes(65), ShouldEqual, "1h 05m")
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1.5, 0.5), ShouldEqual, 0.5)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		filesystem.SetMemMapFs()
		So(filesystem.API().WriteFile("/x/y.json", []byte("{}"), 0644), ShouldBeNil)
		So(Delete("/x"), ShouldBeNil)
		exists, _ := filesystem.API().Exists("/x/y.json")
		So(exists, ShouldBeFalse)
	})
}

func TestStack(t *testing.T) {
	Convey("Stack", t, func() {
		var s Stack[int]
		s.Push(1)
		s.Push(2)
		So(s.Len(), ShouldEqual, 2)
		So(s.Peek(), ShouldEqual, 2)
		So(s.Pop(), ShouldEqual, 2)
		So(s.Pop(), ShouldEqual, 1)
		So(s.Pop(), ShouldEqual, 0)
	})
}
