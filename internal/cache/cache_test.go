package cache

import (
	"path/filepath"
	"testing"

	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCache(t *testing.T) {
	Convey("Given the metadata cache", t, func() {
		key := GenerateKey("dQw4w9WgXcQ", "oembed")

		Convey("Keys ignore case and spaces but not the namespace", func() {
			So(GenerateKey("Some Video", "oembed"), ShouldEqual, GenerateKey("somevideo", "oembed"))
			So(GenerateKey("x", "a"), ShouldNotEqual, GenerateKey("x", "b"))
		})

		Convey("Written entries can be read back", func() {
			So(Write(key, map[string]string{"title": "Never"}), ShouldBeNil)

			var got map[string]string
			So(Read(key, &got), ShouldBeTrue)
			So(got["title"], ShouldEqual, "Never")
		})

		Convey("Missing and corrupt entries are misses", func() {
			var got map[string]string
			So(Read(GenerateKey("absent", "oembed"), &got), ShouldBeFalse)

			bad := GenerateKey("bad", "oembed")
			So(afero.WriteFile(filesystem.API(), filepath.Join(where.Metadata(), bad), []byte("{"), 0o644), ShouldBeNil)
			So(Read(bad, &got), ShouldBeFalse)
		})
	})
}
