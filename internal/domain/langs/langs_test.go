package langs_test

import (
	"testing"

	"github.com/encryptedtouhid/github-readme-stats/internal/domain/langs"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeigh(t *testing.T) {
	Convey("Given raw language usage", t, func() {
		usage := []langs.Usage{
			{Name: "Go", Color: "#00ADD8", Size: 6000, Count: 3},
			{Name: "Shell", Color: "#89e051", Size: 1000, Count: 5},
			{Name: "Makefile", Size: 3000, Count: 1},
		}

		Convey("When weighing purely by size", func() {
			top := langs.Weigh(usage, 1.0, 0.0)

			Convey("Then languages order by bytes written", func() {
				So(top.Languages, ShouldHaveLength, 3)
				So(top.Languages[0].Name, ShouldEqual, "Go")
				So(top.Languages[1].Name, ShouldEqual, "Makefile")
				So(top.Languages[2].Name, ShouldEqual, "Shell")
			})

			Convey("Then percentages are shares of the total size", func() {
				So(top.TotalSize, ShouldEqual, 10000)
				So(top.Languages[0].Percentage, ShouldAlmostEqual, 60)
				So(top.Languages[2].Percentage, ShouldAlmostEqual, 10)
			})

			Convey("Then a missing color falls back to the default", func() {
				So(top.Languages[1].Color, ShouldEqual, langs.DefaultColor)
			})
		})

		Convey("When weighing purely by repository count", func() {
			top := langs.Weigh(usage, 0.0, 1.0)

			Convey("Then the most widespread language wins", func() {
				So(top.Languages[0].Name, ShouldEqual, "Shell")
			})
		})

		Convey("When there is no usage at all", func() {
			top := langs.Weigh(nil, 1.0, 0.0)

			Convey("Then the result is empty but well formed", func() {
				So(top.Languages, ShouldBeEmpty)
				So(top.TotalSize, ShouldEqual, 0)
			})
		})
	})
}
