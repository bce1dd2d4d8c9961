package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	// Title style - bold phosphor green
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TraceGreen).
			MarginBottom(1)

	// Subtitle style - muted gray
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(CoolGray).
			Italic(true)

	// Section header style
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(GridTeal).
			MarginTop(1)

	// Success message style
	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TraceGreen)

	// Error message style
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SpurAmber)

	// Highlight style for important values
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SpurAmber)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(CoolGray)

	ValueStyle = lipgloss.NewStyle().
			Bold(true)

	// Box style for framed content
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(GridTeal).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)
)

// PrintBanner prints the application banner
func PrintBanner() {
	fmt.Println(TitleStyle.Render("specan"))
	fmt.Println(SubtitleStyle.Render("Fourier analysis for data converters: tones, spurs, and noise, itemized."))
	fmt.Println()
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("specan"))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("%s %s\n", SuccessStyle.Render("✓"), message)
}

// PrintInfo prints an informational message
func PrintInfo(key, value string) {
	fmt.Printf("%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Println(HeaderStyle.Render(title))
}

// PrintBox prints content in a styled box
func PrintBox(content string) {
	fmt.Println(BoxStyle.Render(content))
}

// PrintMetricsSummary prints the headline figures of merit in a box
func PrintMetricsSummary(metrics [][2]string) {
	var b strings.Builder
	b.WriteString(SuccessStyle.Render("✓ Analysis Complete"))
	b.WriteString("\n")
	width := 0
	for _, m := range metrics {
		width = max(width, len(m[0]))
	}
	for _, m := range metrics {
		b.WriteString("\n")
		b.WriteString(KeyStyle.Render(m[0] + ":" + strings.Repeat(" ", width-len(m[0])+1)))
		b.WriteString(ValueStyle.Render(m[1]))
	}
	PrintBox(b.String())
}
