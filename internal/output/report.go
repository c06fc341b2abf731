package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/bplint/bplint/pkg/models"
)

// Report is the renderable result of one scan.
type Report struct {
	Issues    []models.Issue `json:"issues"`
	Scanned   int            `json:"scanned"`
	Cancelled bool           `json:"cancelled,omitempty"`
	Duration  time.Duration  `json:"duration_ns"`
}

// NewReport builds a report over the scan's issues, sorted by severity
// (highest first) then by program path. The input slice is not modified.
func NewReport(issues []models.Issue, scanned int, cancelled bool, duration time.Duration) *Report {
	sorted := make([]models.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		if a, b := sorted[i].Severity.Rank(), sorted[j].Severity.Rank(); a != b {
			return a > b
		}
		return sorted[i].ProgramPath < sorted[j].ProgramPath
	})
	return &Report{
		Issues:    sorted,
		Scanned:   scanned,
		Cancelled: cancelled,
		Duration:  duration,
	}
}

// CountBySeverity returns how many issues carry each severity.
func (r *Report) CountBySeverity() map[models.Severity]int {
	out := make(map[models.Severity]int)
	for _, issue := range r.Issues {
		out[issue.Severity]++
	}
	return out
}

// CountByType returns how many issues each detector produced.
func (r *Report) CountByType() map[models.IssueType]int {
	out := make(map[models.IssueType]int)
	for _, issue := range r.Issues {
		out[issue.Type]++
	}
	return out
}

func (r *Report) RenderData() any {
	return r
}

func (r *Report) RenderText(w io.Writer, colored bool) error {
	title := fmt.Sprintf("Scan results: %d issues in %d blueprints", len(r.Issues), r.Scanned)
	if r.Cancelled {
		title += " (cancelled)"
	}

	if len(r.Issues) == 0 {
		if colored {
			color.New(color.FgGreen).Fprintln(w, title)
		} else {
			fmt.Fprintln(w, title)
		}
		return nil
	}

	table := &Table{
		Title:   title,
		Headers: []string{"Severity", "Check", "Blueprint", "Node", "Description"},
		Rows:    make([][]string, 0, len(r.Issues)),
		Footer:  []string{r.summaryLine(), "", "", "", ""},
	}
	for _, issue := range r.Issues {
		table.Rows = append(table.Rows, []string{
			severityCell(issue.Severity, colored),
			string(issue.Type),
			issue.ProgramPath,
			issue.NodeName,
			issue.Description,
		})
	}
	return table.RenderText(w, colored)
}

func (r *Report) RenderMarkdown(w io.Writer) error {
	table := &Table{
		Title:   fmt.Sprintf("Scan results: %d issues in %d blueprints", len(r.Issues), r.Scanned),
		Headers: []string{"Severity", "Check", "Blueprint", "Node", "Description"},
		Rows:    make([][]string, 0, len(r.Issues)),
	}
	for _, issue := range r.Issues {
		table.Rows = append(table.Rows, []string{
			string(issue.Severity),
			string(issue.Type),
			issue.ProgramPath,
			issue.NodeName,
			issue.Description,
		})
	}
	if err := table.RenderMarkdown(w); err != nil {
		return err
	}
	fmt.Fprintln(w, r.summaryLine())
	return nil
}

func (r *Report) summaryLine() string {
	counts := r.CountBySeverity()
	parts := make([]string, 0, 4)
	for _, sev := range []models.Severity{
		models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow,
	} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	return strings.Join(parts, ", ")
}

func severityCell(sev models.Severity, colored bool) string {
	if !colored {
		return string(sev)
	}
	switch sev {
	case models.SeverityCritical:
		return color.New(color.FgRed, color.Bold).Sprint(sev)
	case models.SeverityHigh:
		return color.New(color.FgRed).Sprint(sev)
	case models.SeverityMedium:
		return color.New(color.FgYellow).Sprint(sev)
	default:
		return color.New(color.FgCyan).Sprint(sev)
	}
}
