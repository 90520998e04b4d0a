package config

import (
	"testing"
	"time"

	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("loop.poll_interval_ms"), ShouldEqual, "loop_poll_interval_ms")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given the registered speed step field", t, func() {
		field := Default[key.ProgressiveSpeedStep]

		Convey("It is a float", func() {
			So(field.TypeName(), ShouldEqual, "float")
		})

		Convey("Parse accepts numbers and rejects garbage", func() {
			v, err := field.Parse([]string{"0.1"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0.1)

			_, err = field.Parse([]string{"fast"})
			So(err, ShouldNotBeNil)
		})

		Convey("Validate enforces the range", func() {
			So(field.Validate(0.1), ShouldBeNil)
			So(field.Validate(0.5), ShouldNotBeNil)
			So(field.Validate("text"), ShouldBeNil)
		})

		Convey("Env is prefixed", func() {
			So(field.Env(), ShouldEqual, "REPRISE_PROGRESSIVE_SPEED_STEP")
		})
	})
}

func TestUnboundedField(t *testing.T) {
	Convey("Fields without bounds accept any value", t, func() {
		field := Default[key.ShareBaseURL]
		So(field.Bounds.IsPresent(), ShouldBeFalse)
		So(field.Validate(-1), ShouldBeNil)
	})
}

func TestDurations(t *testing.T) {
	Convey("Given duration settings", t, func() {
		_ = Setup()

		Convey("Millis reads the default poll interval", func() {
			So(Millis(key.LoopPollIntervalMs), ShouldEqual, 100*time.Millisecond)
		})

		Convey("Non-positive overrides fall back to the default", func() {
			viper.Set(key.PracticeAutosaveIntervalS, 0)
			So(Seconds(key.PracticeAutosaveIntervalS), ShouldEqual, 30*time.Second)
			viper.Set(key.PracticeAutosaveIntervalS, 30)
		})
	})
}
