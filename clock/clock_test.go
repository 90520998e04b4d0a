package clock

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestManual(t *testing.T) {
	Convey("Given a manual wall clock", t, func() {
		start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		m := NewManual(start)

		Convey("Now only moves on Advance", func() {
			So(m.Now(), ShouldEqual, start)
			m.Advance(1500 * time.Millisecond)
			So(m.Now(), ShouldEqual, start.Add(1500*time.Millisecond))
		})

		Convey("AfterFunc fires once its deadline passes, in order", func() {
			var fired []string
			m.AfterFunc(200*time.Millisecond, func() { fired = append(fired, "b") })
			m.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })

			m.Advance(50 * time.Millisecond)
			So(fired, ShouldBeEmpty)

			m.Advance(200 * time.Millisecond)
			So(fired, ShouldResemble, []string{"a", "b"})
			So(m.Pending(), ShouldEqual, 0)
		})

		Convey("Stopped timers never fire", func() {
			fired := false
			timer := m.AfterFunc(10*time.Millisecond, func() { fired = true })
			So(timer.Stop(), ShouldBeTrue)
			So(timer.Stop(), ShouldBeFalse)
			m.Advance(time.Second)
			So(fired, ShouldBeFalse)
		})
	})
}

func TestManualAudio(t *testing.T) {
	Convey("Given a manual audio clock", t, func() {
		var a ManualAudio
		a.Advance(0.25)
		a.Advance(0.25)
		So(a.Now(), ShouldEqual, 0.5)
	})
}

func TestDayKey(t *testing.T) {
	Convey("DayKey", t, func() {
		So(DayKey(time.Date(2026, 1, 9, 23, 59, 0, 0, time.Local)), ShouldEqual, "2026-01-09")
	})
}
