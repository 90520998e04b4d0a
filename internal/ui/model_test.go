package ui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notifier", t, func() {
		m := &Model{}

		Convey("Without a notification the view is untouched", func() {
			So(m.View("a\nb"), ShouldEqual, "a\nb")
		})

		Convey("A notification is shown until its own clear message", func() {
			So(m.Update(NotificationMsg("Speed up! Now at 1.05x")), ShouldNotBeNil)
			So(m.Notification(), ShouldEqual, "Speed up! Now at 1.05x")
			So(m.View("a\nb"), ShouldContainSubstring, "Speed up!")
			first := m.notifiedAt

			m.Update(NotificationMsg("Target speed reached!"))
			m.Update(ClearNotificationMsg{at: first})
			So(m.Notification(), ShouldEqual, "Target speed reached!")

			m.Update(ClearNotificationMsg{at: m.notifiedAt})
			So(m.Notification(), ShouldBeEmpty)
		})
	})
}
