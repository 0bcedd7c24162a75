// Package langs ranks a user's programming languages by weighted
// repository usage.
package langs

import (
	"math"
	"sort"

	"github.com/encryptedtouhid/github-readme-stats/internal/domain/model"
)

// DefaultColor is used when the provider reports no color for a language.
const DefaultColor = "#858585"

// Usage is raw per-language usage aggregated across a user's repositories.
type Usage struct {
	Name  string
	Color string
	Size  int64
	Count int
}

// Weigh orders languages by size^sizeWeight * count^countWeight descending
// and computes each language's percentage of the total byte size. The
// default weighting (size 1, count 0) ranks purely by bytes written.
func Weigh(usage []Usage, sizeWeight, countWeight float64) model.TopLanguages {
	type weighted struct {
		Usage
		weight float64
	}

	rows := make([]weighted, 0, len(usage))
	var totalSize int64
	for _, u := range usage {
		if u.Color == "" {
			u.Color = DefaultColor
		}
		totalSize += u.Size
		rows = append(rows, weighted{
			Usage:  u,
			weight: math.Pow(float64(u.Size), sizeWeight) * math.Pow(float64(u.Count), countWeight),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].weight != rows[j].weight {
			return rows[i].weight > rows[j].weight
		}
		return rows[i].Name < rows[j].Name
	})

	out := model.TopLanguages{
		Languages: make([]model.LanguageStats, 0, len(rows)),
		TotalSize: totalSize,
	}
	for _, row := range rows {
		var pct float64
		if totalSize > 0 {
			pct = float64(row.Size) / float64(totalSize) * 100
		}
		out.Languages = append(out.Languages, model.LanguageStats{
			Name:       row.Name,
			Color:      row.Color,
			Size:       row.Size,
			RepoCount:  row.Count,
			Percentage: pct,
		})
	}
	return out
}
