// Package rank converts raw GitHub activity counters into a percentile
// and letter grade.
//
// Each counter is normalized against a fixed median and pushed through a
// closed-form cumulative-distribution transform; the weighted sum decides
// where the user lands between "S" and "C". The formulas are part of the
// product's visible output and must not be changed.
package rank

import (
	"math"

	"github.com/encryptedtouhid/github-readme-stats/internal/domain/model"
)

// Median reference values for normalization.
const (
	commitsMedianDefault = 250
	commitsMedianAllTime = 1000
	prsMedian            = 50
	issuesMedian         = 25
	reviewsMedian        = 2
	starsMedian          = 50
	followersMedian      = 10
)

// Metric weights.
const (
	commitsWeight   = 2.0
	prsWeight       = 3.0
	issuesWeight    = 1.0
	reviewsWeight   = 1.0
	starsWeight     = 4.0
	followersWeight = 1.0

	totalWeight = commitsWeight + prsWeight + issuesWeight + reviewsWeight + starsWeight + followersWeight
)

var (
	levels     = []string{"S", "A+", "A", "A-", "B+", "B", "B-", "C+", "C"}
	thresholds = []float64{1, 12.5, 25, 37.5, 50, 62.5, 75, 87.5, 100}
)

// Calculate derives a rank from the six activity counters. allCommits
// selects the higher all-time commits median, since lifetime counts run
// well above the default recent-window count.
func Calculate(commits, prs, issues, reviews, stars, followers int, allCommits bool) model.UserRank {
	commitsMedian := commitsMedianDefault
	if allCommits {
		commitsMedian = commitsMedianAllTime
	}

	sum := commitsWeight*exponentialCDF(float64(commits)/float64(commitsMedian)) +
		prsWeight*exponentialCDF(float64(prs)/prsMedian) +
		issuesWeight*exponentialCDF(float64(issues)/issuesMedian) +
		reviewsWeight*exponentialCDF(float64(reviews)/reviewsMedian) +
		starsWeight*logNormalCDF(float64(stars)/starsMedian) +
		followersWeight*logNormalCDF(float64(followers)/followersMedian)

	percentile := (1 - sum/totalWeight) * 100

	return model.UserRank{
		Level:      level(percentile),
		Percentile: percentile,
	}
}

func exponentialCDF(x float64) float64 {
	return 1 - math.Pow(2, -x)
}

func logNormalCDF(x float64) float64 {
	return x / (1 + x)
}

// level maps a percentile to a letter grade: the first threshold the
// percentile does not exceed wins; anything past 100 falls through to "C".
func level(percentile float64) string {
	for i, t := range thresholds {
		if percentile <= t {
			return levels[i]
		}
	}
	return levels[len(levels)-1]
}
