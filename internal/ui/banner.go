// Package ui renders the startup banner printed to the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorDim     = lipgloss.Color("241")

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorDim).Width(14)
	BoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorPrimary).Padding(0, 1)
)

// BannerInfo is what the startup banner reports.
type BannerInfo struct {
	Version    string
	Listen     string
	Backend    string
	Model      string
	WorkingDir string
	Allowed    []string
	Tools      int
	Commands   string
}

// Banner renders info as a boxed summary.
func Banner(info BannerInfo) string {
	title := "toolproxy"
	if info.Version != "" {
		title += " " + info.Version
	}

	rows := [][2]string{
		{"listening", info.Listen},
		{"backend", info.Backend},
		{"model", info.Model},
		{"working dir", info.WorkingDir},
	}
	if len(info.Allowed) > 0 {
		rows = append(rows, [2]string{"allowed dirs", strings.Join(info.Allowed, ", ")})
	}
	rows = append(rows,
		[2]string{"tools", fmt.Sprintf("%d", info.Tools)},
		[2]string{"commands", info.Commands},
	)

	lines := []string{TitleStyle.Render(title), ""}
	for _, r := range rows {
		lines = append(lines, LabelStyle.Render(r[0])+r[1])
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}
