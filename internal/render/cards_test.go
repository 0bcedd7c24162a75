package render_test

import (
	"testing"
	"time"

	"github.com/encryptedtouhid/github-readme-stats/internal/domain/model"
	"github.com/encryptedtouhid/github-readme-stats/internal/render"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLookup(t *testing.T) {
	Convey("Given the theme catalog", t, func() {
		Convey("When resolving a known theme", func() {
			theme := render.Lookup("dark")

			Convey("Then its palette is returned", func() {
				So(theme.Bg, ShouldEqual, "151515")
				So(theme.Icon, ShouldEqual, "79ff97")
			})
		})

		Convey("When the name differs in case or padding", func() {
			So(render.Lookup(" TokyoNight "), ShouldResemble, render.Lookup("tokyonight"))
		})

		Convey("When the theme is unknown", func() {
			So(render.Lookup("no-such-theme"), ShouldResemble, render.Lookup("default"))
			So(render.Lookup(""), ShouldResemble, render.Lookup("default"))
		})
	})
}

func TestStreakCard(t *testing.T) {
	Convey("Given streak stats", t, func() {
		first := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		start := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)
		stats := model.StreakStats{
			Username:           "octocat",
			TotalContributions: 8,
			CurrentStreak:      model.StreakInfo{Length: 4, Start: &start, End: &end},
			LongestStreak:      model.StreakInfo{Length: 4, Start: &first, End: &end},
			FirstContribution:  &first,
		}

		Convey("When rendering the card", func() {
			body, err := render.StreakCard(stats, render.Lookup("default"))

			Convey("Then the numbers and date ranges are embedded", func() {
				So(err, ShouldBeNil)
				svg := string(body)
				So(svg, ShouldStartWith, "<svg")
				So(svg, ShouldContainSubstring, ">8<")
				So(svg, ShouldContainSubstring, "Jan 6, 2024 - Jan 9, 2024")
				So(svg, ShouldContainSubstring, "Jan 1, 2024 - Present")
			})
		})

		Convey("When the streaks are empty", func() {
			body, err := render.StreakCard(model.StreakStats{Username: "octocat"}, render.Lookup("default"))

			Convey("Then the card still renders with zeros", func() {
				So(err, ShouldBeNil)
				So(string(body), ShouldContainSubstring, ">0<")
			})
		})

		Convey("When using a themed palette", func() {
			body, err := render.StreakCard(stats, render.Lookup("radical"))

			Convey("Then the theme colors appear in the markup", func() {
				So(err, ShouldBeNil)
				So(string(body), ShouldContainSubstring, "#141321")
			})
		})
	})
}

func TestStatsCard(t *testing.T) {
	Convey("Given user stats", t, func() {
		stats := model.UserStats{
			Name:          "The Octocat",
			Login:         "octocat",
			TotalStars:    150,
			TotalCommits:  120,
			TotalPRs:      40,
			TotalIssues:   20,
			ContributedTo: 7,
			Rank:          model.UserRank{Level: "A+", Percentile: 12.3},
		}

		Convey("When rendering the card", func() {
			body, err := render.StatsCard(stats, render.Lookup("default"))

			Convey("Then the title, rows and rank badge are embedded", func() {
				So(err, ShouldBeNil)
				svg := string(body)
				So(svg, ShouldContainSubstring, "The Octocat's GitHub Stats")
				So(svg, ShouldContainSubstring, ">150<")
				So(svg, ShouldContainSubstring, "A+")
				So(svg, ShouldContainSubstring, "top 12.3%")
			})
		})
	})
}

func TestErrorCard(t *testing.T) {
	Convey("Given an error message", t, func() {
		Convey("When rendering the error card", func() {
			body := render.ErrorCard("user \"ghost\" not found", render.Lookup("default"))

			Convey("Then the message is embedded", func() {
				So(string(body), ShouldContainSubstring, "Something went wrong")
				So(string(body), ShouldContainSubstring, "ghost")
			})
		})
	})
}
