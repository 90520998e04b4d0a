package trainer

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/reprise-cli/reprise/event"
	"github.com/reprise-cli/reprise/playback"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClamp(t *testing.T) {
	Convey("Given out of range settings", t, func() {
		So(ClampReps(0), ShouldEqual, 3)
		So(ClampReps(-4), ShouldEqual, 1)
		So(ClampReps(50), ShouldEqual, 20)
		So(ClampReps(7), ShouldEqual, 7)

		So(ClampStep(0), ShouldEqual, 0.05)
		So(ClampStep(math.NaN()), ShouldEqual, 0.05)
		So(ClampStep(0.001), ShouldEqual, 0.01)
		So(ClampStep(1), ShouldEqual, 0.25)

		So(ClampTarget(0), ShouldEqual, 1.0)
		So(ClampTarget(0.1), ShouldEqual, 0.25)
		So(ClampTarget(3), ShouldEqual, 2.0)

		So(Settings{}.Normalize(), ShouldResemble, DefaultSettings())
	})
}

func TestTrainer(t *testing.T) {
	Convey("Given a trainer at 0.7x aiming for 1.0x", t, func() {
		fake := playback.NewFake(300)
		So(fake.SetRate(0.7), ShouldBeNil)

		bus := event.NewBus()
		var events []event.Event
		bus.Subscribe(func(e event.Event) { events = append(events, e) })

		tr := New(fake, DefaultSettings(), bus)

		Convey("Reps are ignored while idle", func() {
			tr.OnRep(1)
			tr.OnRep(2)
			tr.OnRep(3)
			rate, _ := fake.Rate()
			So(rate, ShouldEqual, 0.7)
			So(tr.State(), ShouldEqual, Idle)
			So(tr.Progress(), ShouldEqual, 0)
		})

		Convey("When training", func() {
			tr.Enable()

			Convey("Progress tracks reps toward the next step", func() {
				tr.OnRep(1)
				So(tr.Progress(), ShouldAlmostEqual, 1.0/3)
				So(tr.RepsLeft(), ShouldEqual, 2)
			})

			Convey("Every third rep adds 0.05x and resets the count", func() {
				for i := 0; i < 3; i++ {
					tr.OnRep(i)
				}
				rate, _ := fake.Rate()
				So(rate, ShouldEqual, 0.75)
				So(tr.Reps(), ShouldEqual, 0)
				So(events, ShouldHaveLength, 2)
				So(events[0].Kind, ShouldEqual, event.SpeedChanged)
				So(events[1].Kind, ShouldEqual, event.ProgressiveSpeedUp)
				So(events[1].Float("speed"), ShouldEqual, 0.75)
			})

			Convey("Training completes exactly at the target", func() {
				var rates []float64
				for i := 0; i < 18; i++ {
					tr.OnRep(i)
					if tr.Reps() == 0 {
						rate, _ := fake.Rate()
						rates = append(rates, rate)
					}
				}

				So(rates, ShouldResemble, []float64{0.75, 0.8, 0.85, 0.9, 0.95, 1.0})
				So(tr.State(), ShouldEqual, Complete)
				So(tr.Enabled(), ShouldBeFalse)
				So(events[len(events)-1].Kind, ShouldEqual, event.ProgressiveTargetReached)

				Convey("Further reps do nothing until re-enabled", func() {
					tr.OnRep(0)
					So(tr.Reps(), ShouldEqual, 0)

					tr.Enable()
					So(tr.State(), ShouldEqual, Training)
					So(tr.Reps(), ShouldEqual, 0)
				})
			})

			Convey("The last step is capped at the target", func() {
				So(fake.SetRate(0.98), ShouldBeNil)
				tr.OnRep(1)
				tr.OnRep(2)
				tr.OnRep(3)
				rate, _ := fake.Rate()
				So(rate, ShouldEqual, 1.0)
				So(tr.State(), ShouldEqual, Complete)
			})

			Convey("Already being above the target completes without slowing down", func() {
				So(fake.SetRate(1.5), ShouldBeNil)
				tr.OnRep(1)
				tr.OnRep(2)
				tr.OnRep(3)
				rate, _ := fake.Rate()
				So(rate, ShouldEqual, 1.5)
				So(tr.State(), ShouldEqual, Complete)
				So(events, ShouldHaveLength, 1)
				So(events[0].Kind, ShouldEqual, event.ProgressiveTargetReached)
			})

			Convey("A player failure keeps the count and retries on the next rep", func() {
				tr.OnRep(1)
				tr.OnRep(2)
				fake.Fail(errors.New("busy"))
				tr.OnRep(3)
				So(tr.Reps(), ShouldEqual, 3)

				fake.Fail(nil)
				tr.OnRep(4)
				rate, _ := fake.Rate()
				So(rate, ShouldEqual, 0.75)
				So(tr.Reps(), ShouldEqual, 0)
			})

			Convey("Disabling leaves the speed alone", func() {
				tr.OnRep(1)
				tr.Disable()
				So(tr.State(), ShouldEqual, Idle)
				rate, _ := fake.Rate()
				So(rate, ShouldEqual, 0.7)
			})
		})

		Convey("Setters clamp and report the stored value", func() {
			So(tr.SetRepsPerStep(99), ShouldEqual, 20)
			So(tr.SetSpeedStep(0), ShouldEqual, 0.05)
			So(tr.SetTargetSpeed(0.1), ShouldEqual, 0.25)
			So(tr.Settings(), ShouldResemble, Settings{RepsPerStep: 20, SpeedStep: 0.05, TargetSpeed: 0.25})
		})

		Convey("Toggle flips training", func() {
			So(tr.Toggle(), ShouldBeTrue)
			So(tr.Toggle(), ShouldBeFalse)
		})
	})
}

func TestConcurrentToggle(t *testing.T) {
	Convey("Concurrent toggles alternate between training and idle", t, func() {
		tr := New(playback.NewFake(300), DefaultSettings(), nil)

		const toggles = 100

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			enabled int
		)

		for range toggles {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if tr.Toggle() {
					mu.Lock()
					enabled++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		So(enabled, ShouldEqual, toggles/2)
		So(tr.State(), ShouldEqual, Idle)
	})
}

func TestRebase(t *testing.T) {
	Convey("Only fields whose configured value moved are replaced", t, func() {
		stored := Settings{RepsPerStep: 5, SpeedStep: 0.1, TargetSpeed: 1.5}
		previous := DefaultSettings()
		configured := Settings{RepsPerStep: 7, SpeedStep: 0.05, TargetSpeed: 1}

		So(stored.Rebase(previous, configured), ShouldResemble, Settings{RepsPerStep: 7, SpeedStep: 0.1, TargetSpeed: 1.5})
		So(stored.Rebase(previous, previous), ShouldResemble, stored)
	})
}
