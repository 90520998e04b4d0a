package audio

import (
	"testing"
	"time"

	"github.com/reprise-cli/reprise/metronome"
	. "github.com/smartystreets/goconvey/convey"
)

func render(e *Engine, frames int) [][2]float64 {
	buf := make([][2]float64, frames)
	n, ok := e.Stream(buf)
	So(ok, ShouldBeTrue)
	So(n, ShouldEqual, frames)
	return buf
}

func TestEngine(t *testing.T) {
	Convey("Given an engine at 1000 Hz", t, func() {
		e := NewEngine(1000)

		Convey("The clock advances by rendered frames", func() {
			So(e.Now(), ShouldEqual, 0)
			render(e, 250)
			So(e.Now(), ShouldEqual, 0.25)
			So(e.Rendered(), ShouldEqual, 250)
		})

		Convey("A click starts at its exact frame", func() {
			click := metronome.NewClick(0.1, true, 0.7)
			click.Frequency = 250
			e.Schedule(click)

			buf := render(e, 200)
			for i := 0; i < 100; i++ {
				So(buf[i][0], ShouldEqual, 0)
			}

			// sin(2*pi*250*t) peaks one frame in at this rate
			So(buf[101][0], ShouldAlmostEqual, click.Gain(0.001), 1e-9)
			So(buf[101][1], ShouldEqual, buf[101][0])

			Convey("And is silent after its length", func() {
				for i := 150; i < 200; i++ {
					So(buf[i][0], ShouldEqual, 0)
				}
				So(e.Pending(), ShouldEqual, 0)
			})
		})

		Convey("A click in the past plays immediately", func() {
			render(e, 500)
			click := metronome.NewClick(0.1, false, 1)
			click.Frequency = 250
			e.Schedule(click)

			buf := render(e, 10)
			So(buf[1][0], ShouldNotEqual, 0)
		})

		Convey("Clicks are queued in time order", func() {
			e.Schedule(metronome.NewClick(0.3, false, 1))
			e.Schedule(metronome.NewClick(0.1, true, 1))
			e.Schedule(metronome.NewClick(0.2, false, 1))
			So(e.Pending(), ShouldEqual, 3)

			render(e, 150)
			So(e.Pending(), ShouldEqual, 2)
		})

		Convey("The stream never ends and reports no error", func() {
			So(e.Err(), ShouldBeNil)
		})
	})
}

func TestHeadless(t *testing.T) {
	Convey("Given a headless output", t, func() {
		e := NewEngine(8000)
		out := OpenHeadless(e, 5*time.Millisecond)
		Reset(out.Close)

		So(out.Headless(), ShouldBeTrue)

		Convey("The clock follows real time", func() {
			deadline := time.Now().Add(2 * time.Second)
			for e.Now() < 0.05 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(e.Now(), ShouldBeGreaterThanOrEqualTo, 0.05)
		})

		Convey("Muting keeps the clock running", func() {
			out.SetMuted(true)
			before := e.Now()
			time.Sleep(50 * time.Millisecond)
			So(e.Now(), ShouldBeGreaterThan, before)
		})

		Convey("Close is idempotent", func() {
			So(func() {
				out.Close()
				out.Close()
			}, ShouldNotPanic)
		})
	})
}
