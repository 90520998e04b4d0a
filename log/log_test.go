package log

import (
	"os"
	"testing"

	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/where"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)

		Convey("Output is discarded", func() {
			before := logFiles()
			Info("dropped")
			So(logFiles(), ShouldResemble, before)
			So(file, ShouldBeNil)
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "nonsense")

		So(Setup(), ShouldBeNil)

		Convey("An unknown level falls back to info", func() {
			So(logger.GetLevel().String(), ShouldEqual, "info")
		})

		Convey("Entries land in the daily log file", func() {
			Component("test").Info("hello")
			files := lo.Must(filesystem.API().ReadDir(where.Logs()))
			So(len(files), ShouldBeGreaterThan, 0)
		})

		Convey("Setting up again closes the previous file", func() {
			previous := file
			So(previous, ShouldNotBeNil)

			So(Setup(), ShouldBeNil)
			So(file != previous, ShouldBeTrue)

			_, err := previous.(interface{ Write([]byte) (int, error) }).Write([]byte("late\n"))
			So(err, ShouldNotBeNil)
		})

		Reset(func() {
			viper.Set(key.LogsWrite, false)
			_ = Setup()
		})
	})
}

// logFiles returns the names and sizes of everything under the log directory.
func logFiles() map[string]int64 {
	entries, err := filesystem.API().ReadDir(where.Logs())
	if err != nil && !os.IsNotExist(err) {
		panic(err)
	}

	sizes := make(map[string]int64, len(entries))
	for _, entry := range entries {
		sizes[entry.Name()] = entry.Size()
	}
	return sizes
}
