package ui

import "github.com/charmbracelet/lipgloss"

var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#8b949e"))

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("#c9d1d9")).
			Background(lipgloss.Color("#1f6feb"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#c9d1d9")).
			Background(lipgloss.Color("#21262d"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b949e"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f85149"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7ee787"))

	nsfwStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f85149")).
			Bold(true)
)

// typeGlyphs mark the media type in the listing.
var typeGlyphs = map[string]string{
	"image":   "img",
	"video":   "vid",
	"gallery": "gal",
	"embed":   "emb",
}

// sourceColors differentiate tabs by upstream.
var sourceColors = map[string]lipgloss.Color{
	"reddit":  lipgloss.Color("#ff7b72"),
	"booru":   lipgloss.Color("#d2a8ff"),
	"youtube": lipgloss.Color("#f85149"),
}
