package playback

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitize(t *testing.T) {
	Convey("Given media targets", t, func() {
		Convey("YouTube URLs pass through", func() {
			target, err := sanitizeMediaTarget("  https://www.youtube.com/watch?v=dQw4w9WgXcQ ")
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		})

		Convey("Flags and foreign schemes are rejected", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)

			_, err = sanitizeMediaTarget("file:///etc/passwd")
			So(err, ShouldNotBeNil)

			_, err = sanitizeMediaTarget("https://x\nquit")
			So(err, ShouldNotBeNil)

			_, err = sanitizeMediaTarget("")
			So(err, ShouldNotBeNil)
		})

		Convey("Titles lose control characters", func() {
			So(sanitizeTitle(" Solo\nTake\t2\x00 "), ShouldEqual, "Solo Take 2")
		})
	})
}

func TestSeekCommand(t *testing.T) {
	Convey("Seek flags follow allowSeekAhead", t, func() {
		So(seekCommand(12.5, true), ShouldResemble, []any{"seek", 12.5, "absolute"})
		So(seekCommand(12.5, false), ShouldResemble, []any{"seek", 12.5, "absolute+exact"})
	})
}

func TestParseResponse(t *testing.T) {
	Convey("Given reply lines", t, func() {
		Convey("Data is returned on success", func() {
			resp, err := parseResponse([]byte(`{"data":42.5,"error":"success","request_id":0}`))
			So(err, ShouldBeNil)
			So(resp.Data, ShouldEqual, 42.5)
		})

		Convey("Broadcast events are skipped", func() {
			resp, err := parseResponse([]byte(`{"event":"playback-restart"}`))
			So(err, ShouldBeNil)
			So(resp, ShouldBeNil)
		})

		Convey("mpv errors are reported", func() {
			_, err := parseResponse([]byte(`{"error":"property unavailable"}`))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "property unavailable")
		})
	})
}

func TestTracker(t *testing.T) {
	Convey("Given a state tracker", t, func() {
		var tr tracker

		Convey("Unpausing reports playing", func() {
			state, changed := tr.observe("pause", false)
			So(changed, ShouldBeTrue)
			So(state, ShouldEqual, Playing)

			_, changed = tr.observe("pause", false)
			So(changed, ShouldBeFalse)

			state, _ = tr.observe("pause", true)
			So(state, ShouldEqual, Paused)
		})

		Convey("End of file wins over pause until a new file loads", func() {
			tr.observe("pause", false)
			state, _ := tr.observe("eof-reached", true)
			So(state, ShouldEqual, Ended)

			state, changed := tr.observe("pause", true)
			So(changed, ShouldBeFalse)
			So(state, ShouldEqual, Ended)

			state, _ = tr.observe("file-loaded", map[string]any{"event": "file-loaded"})
			So(state, ShouldEqual, Paused)
		})

		Convey("An end-file event with reason eof ends playback", func() {
			tr.observe("pause", false)
			state, _ := tr.observe("end-file", map[string]any{"event": "end-file", "reason": "eof"})
			So(state, ShouldEqual, Ended)
		})

		Convey("Unknown names change nothing", func() {
			_, changed := tr.observe("seeking", true)
			So(changed, ShouldBeFalse)
		})
	})
}

func TestEventListenerConsume(t *testing.T) {
	Convey("Given a listener fed partial lines", t, func() {
		var names []string
		el := NewEventListener("", func(name string, _ any) { names = append(names, name) })

		rest := el.consume([]byte(`{"event":"property-change","name":"pause","data":true}` + "\n" + `{"event":"end-`))
		So(names, ShouldResemble, []string{"pause"})

		rest = el.consume(append(rest, []byte(`file","reason":"eof"}`+"\n"+`{"error":"success"}`+"\n")...))
		So(rest, ShouldBeEmpty)
		So(names, ShouldResemble, []string{"pause", "end-file"})
	})
}

func TestFake(t *testing.T) {
	Convey("Given a fake handle", t, func() {
		fake := NewFake(120)
		var states []State
		unsubscribe := fake.Subscribe(func(s State) { states = append(states, s) })

		Convey("Loading starts playback and time advances by the rate", func() {
			So(fake.Load("https://youtu.be/abc", "abc"), ShouldBeNil)
			So(fake.SetRate(0.5), ShouldBeNil)
			fake.Advance(10)

			pos, err := fake.CurrentTime()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 5)
			So(states, ShouldResemble, []State{Playing})
		})

		Convey("Paused time does not move", func() {
			fake.Advance(10)
			pos, _ := fake.CurrentTime()
			So(pos, ShouldEqual, 0)
		})

		Convey("Seeks are recorded", func() {
			So(fake.SeekTo(30, true), ShouldBeNil)
			So(fake.Seeks, ShouldResemble, []float64{30})
		})

		Convey("Injected failures surface on every call", func() {
			boom := errors.New("boom")
			fake.Fail(boom)
			_, err := fake.CurrentTime()
			So(err, ShouldEqual, boom)
			So(fake.SeekTo(1, true), ShouldEqual, boom)
			So(fake.Play(), ShouldEqual, boom)
		})

		Convey("Unsubscribed listeners are not called", func() {
			unsubscribe()
			So(fake.Play(), ShouldBeNil)
			So(states, ShouldBeEmpty)
		})

		Convey("Close is idempotent and releases waiters", func() {
			So(fake.Close(), ShouldBeNil)
			So(fake.Close(), ShouldBeNil)
			_, open := <-fake.Wait()
			So(open, ShouldBeFalse)
		})
	})
}
