package where

import (
	"path/filepath"
	"testing"

	"github.com/reprise-cli/reprise/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Store files live in the config directory", func() {
			So(filepath.Dir(Store()), ShouldEqual, Config())
			So(filepath.Dir(Database()), ShouldEqual, Config())
		})

		Convey("Config() honours the override", func() {
			t.Setenv(EnvConfigPath, "/tmp/reprise-test-config")
			So(Config(), ShouldEqual, "/tmp/reprise-test-config")
		})
	})
}
