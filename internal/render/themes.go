// Package render builds themed SVG stat cards.
package render

import "strings"

// Theme holds the color set for a card. Values are hex colors without the
// leading hash, matching the upstream theme catalog.
type Theme struct {
	Title  string
	Text   string
	Icon   string
	Bg     string
	Border string
}

var themes = map[string]Theme{
	"default": {
		Title:  "2f80ed",
		Text:   "434d58",
		Icon:   "4c71f2",
		Bg:     "fffefe",
		Border: "e4e2e2",
	},
	"dark": {
		Title:  "fff",
		Text:   "9f9f9f",
		Icon:   "79ff97",
		Bg:     "151515",
		Border: "e4e2e2",
	},
	"radical": {
		Title:  "fe428e",
		Text:   "a9fef7",
		Icon:   "f8d847",
		Bg:     "141321",
		Border: "e4e2e2",
	},
	"merko": {
		Title:  "abd200",
		Text:   "68b587",
		Icon:   "b7d364",
		Bg:     "0a0f0b",
		Border: "e4e2e2",
	},
	"gruvbox": {
		Title:  "fabd2f",
		Text:   "8ec07c",
		Icon:   "fe8019",
		Bg:     "282828",
		Border: "e4e2e2",
	},
	"tokyonight": {
		Title:  "70a5fd",
		Text:   "38bdae",
		Icon:   "bf91f3",
		Bg:     "1a1b27",
		Border: "e4e2e2",
	},
}

// Lookup resolves a theme by name, case-insensitively, falling back to
// the default theme for unknown names.
func Lookup(name string) Theme {
	if t, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return themes["default"]
}
