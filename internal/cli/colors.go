package cli

import "github.com/charmbracelet/lipgloss"

// Scope colour palette
// Shared theme colours for consistent branding across the CLI
var (
	// Core scope colours
	TraceGreen = lipgloss.Color("#33FF66") // Phosphor green
	GridTeal   = lipgloss.Color("#00A5A5") // Graticule teal
	SpurAmber  = lipgloss.Color("#FFB000") // Spur marker amber
	NoiseBlue  = lipgloss.Color("#3C6EB4") // Noise floor blue

	// Accent colours
	CoolGray = lipgloss.Color("#8A8A8A") // Subtle text
)
