package event

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBus(t *testing.T) {
	Convey("Given a bus with two subscribers", t, func() {
		bus := NewBus()
		var first, second []Kind

		unsubscribe := bus.Subscribe(func(e Event) { first = append(first, e.Kind) })
		bus.Subscribe(func(e Event) { second = append(second, e.Kind) })

		Convey("Both receive published events in order", func() {
			bus.Publish(Event{Kind: RepCounted})
			bus.Publish(Event{Kind: SpeedChanged})
			So(first, ShouldResemble, []Kind{RepCounted, SpeedChanged})
			So(second, ShouldResemble, first)
		})

		Convey("An unsubscribed handler stops receiving", func() {
			unsubscribe()
			unsubscribe()
			bus.Publish(Event{Kind: MetronomeStarted})
			So(first, ShouldBeEmpty)
			So(second, ShouldResemble, []Kind{MetronomeStarted})
		})

		Convey("Events are timestamped when published without a time", func() {
			var got Event
			bus.Subscribe(func(e Event) { got = e })
			bus.Publish(Event{Kind: RepCounted})
			So(got.At.IsZero(), ShouldBeFalse)

			at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			bus.Publish(Event{Kind: RepCounted, At: at})
			So(got.At, ShouldEqual, at)
		})

		Convey("Analytics accepts any event", func() {
			bus.Subscribe(Analytics)
			So(func() { bus.Publish(Event{Kind: SpeedChanged, Data: map[string]any{"speed": 1.25}}) }, ShouldNotPanic)
		})
	})
}

func TestEventData(t *testing.T) {
	Convey("Given an event with data", t, func() {
		e := Event{Data: map[string]any{"speed": 0.75, "reps": 3}}

		So(e.Float("speed"), ShouldEqual, 0.75)
		So(e.Int("reps"), ShouldEqual, 3)
		So(e.Float("reps"), ShouldEqual, 3)
		So(e.Float("missing"), ShouldEqual, 0)
	})
}
