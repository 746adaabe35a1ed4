package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anikchand461/envpod/internal/doctor"
)

// RenderFindings lays out a diagnostic report, grouped severity glyphs first.
func RenderFindings(project string, findings []doctor.Finding) string {
	var sections []string
	sections = append(sections, titleStyle.Render("envpod doctor • "+project))

	lines := make([]string, 0, len(findings))
	for _, finding := range findings {
		line := fmt.Sprintf(" %s %s: %s", severityIcon(finding.Severity), finding.Subject, finding.Message)
		if finding.SuggestedAction != "" {
			line += "\n   " + detailStyle.Render("→ "+finding.SuggestedAction)
		}
		lines = append(lines, line)
	}
	sections = append(sections, strings.Join(lines, "\n"))

	errors, warnings := 0, 0
	for _, finding := range findings {
		switch finding.Severity {
		case doctor.SeverityError:
			errors++
		case doctor.SeverityWarning:
			warnings++
		}
	}

	summary := successStyle.Render("✓ no problems found")
	if errors > 0 || warnings > 0 {
		summary = fmt.Sprintf("%s, %s",
			failureStyle.Render(fmt.Sprintf("%d error(s)", errors)),
			warningStyle.Render(fmt.Sprintf("%d warning(s)", warnings)))
	}
	sections = append(sections, summaryStyle.Render(summary))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func severityIcon(severity doctor.Severity) string {
	switch severity {
	case doctor.SeverityError:
		return failureStyle.Render("✗")
	case doctor.SeverityWarning:
		return warningStyle.Render("!")
	default:
		return infoStyle.Render("•")
	}
}
