package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/driftscan/driftscan/internal/scan"
)

var (
	labelStyle     = lipgloss.NewStyle().Bold(true).Width(12)
	valueStyle     = lipgloss.NewStyle()
	dimStyle       = lipgloss.NewStyle().Faint(true)
	progressStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	cancelledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func printSummary(w io.Writer, r *scan.Result) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	}
	row("Root", r.RootPath)
	row("Files", fmt.Sprintf("%d", r.TotalFiles))
	row("Directories", fmt.Sprintf("%d", r.TotalDirectories))
	row("Size", fmt.Sprintf("%s (%d bytes)", r.TotalSizeFormatted, r.TotalSize))
	if r.EntriesSkipped > 0 {
		row("Skipped", fmt.Sprintf("%d unreadable", r.EntriesSkipped))
	}
	row("Duration", (time.Duration(r.DurationMs) * time.Millisecond).String())
}
