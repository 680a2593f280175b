// Package ui provides terminal output helpers for the CLI.
package ui

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#FFB300")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

// PrintHeader prints the CLI banner
func PrintHeader(title string, subtitle string) {
	width := 60
	if w := pterm.GetTerminalWidth(); w > 0 && w < width {
		width = w
	}

	header := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 2).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Center,
				TitleStyle.Render(title),
				SecondaryStyle.Render(subtitle),
			),
		)

	fmt.Println(header)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Println(SuccessStyle.Render("✓ " + message))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+message))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Println(WarningStyle.Render("⚠ " + message))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	color.New(color.FgCyan).Println("ℹ " + message)
}

// MigrationRow is one line of the migration status table.
type MigrationRow struct {
	Name       string
	Timestamp  int64
	ExecutedAt int64
}

// PrintLedgerTable renders applied migrations as a table.
func PrintLedgerTable(rows []MigrationRow) {
	data := pterm.TableData{{"Name", "Timestamp", "Executed At"}}
	for _, row := range rows {
		executed := "-"
		if row.ExecutedAt > 0 {
			executed = time.Unix(row.ExecutedAt, 0).Format(time.RFC3339)
		}
		data = append(data, []string{
			row.Name,
			strconv.FormatInt(row.Timestamp, 10),
			executed,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
