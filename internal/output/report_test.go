package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bplint/bplint/pkg/models"
)

func sampleIssues() []models.Issue {
	return []models.Issue{
		{Type: models.IssueDeadNode, ProgramPath: "/Game/B", NodeName: "Health", Severity: models.SeverityLow, Description: "Variable 'Health' is retrieved but never used"},
		{Type: models.IssueTickAbuse, ProgramPath: "/Game/A", NodeName: "Event Tick", Severity: models.SeverityCritical, Description: "Tick event has high complexity (60 connected nodes)"},
		{Type: models.IssueCastAbuse, ProgramPath: "/Game/C", NodeName: "Cast To BP_Enemy", Severity: models.SeverityHigh, Description: "Cast node 'Cast To BP_Enemy' may cause performance issues in Tick event context"},
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatMarkdown, ParseFormat("md"))
	assert.Equal(t, FormatText, ParseFormat(""))
	assert.Equal(t, FormatText, ParseFormat("bogus"))
}

func TestReportSortsBySeverity(t *testing.T) {
	r := NewReport(sampleIssues(), 3, false, time.Second)

	require.Len(t, r.Issues, 3)
	assert.Equal(t, models.SeverityCritical, r.Issues[0].Severity)
	assert.Equal(t, models.SeverityHigh, r.Issues[1].Severity)
	assert.Equal(t, models.SeverityLow, r.Issues[2].Severity)
}

func TestReportCounts(t *testing.T) {
	r := NewReport(sampleIssues(), 3, false, time.Second)

	assert.Equal(t, 1, r.CountBySeverity()[models.SeverityCritical])
	assert.Equal(t, 1, r.CountByType()[models.IssueDeadNode])
	assert.Equal(t, 0, r.CountByType()[models.IssueOrphanNode])
}

func TestReportRenderText(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport(sampleIssues(), 3, false, time.Second)
	require.NoError(t, r.RenderText(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "3 issues in 3 blueprints")
	assert.Contains(t, out, "/Game/A")
	assert.Contains(t, out, "1 critical, 1 high, 1 low")
}

func TestReportRenderTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport(nil, 5, false, time.Second)
	require.NoError(t, r.RenderText(&buf, false))
	assert.Contains(t, buf.String(), "0 issues in 5 blueprints")
}

func TestReportRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport(sampleIssues(), 3, true, time.Second)
	require.NoError(t, r.RenderMarkdown(&buf))

	out := buf.String()
	assert.Contains(t, out, "| Severity | Check | Blueprint | Node | Description |")
	assert.Contains(t, out, "| critical | tick_abuse | /Game/A |")
}
