package detector

import (
	"fmt"

	"github.com/bplint/bplint/internal/graph"
	"github.com/bplint/bplint/pkg/models"
)

// TickAbuse measures how much work hangs off per-frame-update events. The
// connected-node count downstream of a tick event is a complexity proxy;
// past the configured threshold the event is reported, with severity
// scaling by how far past it runs.
type TickAbuse struct{}

func (d *TickAbuse) Type() models.IssueType { return models.IssueTickAbuse }

func (d *TickAbuse) Detect(ctx *Context, p *models.Program) []models.Issue {
	var issues []models.Issue
	for _, g := range p.EventGraphs {
		for _, n := range g.Nodes {
			if !ctx.Rules.IsTickEvent(n) {
				continue
			}
			count := graph.CountConnected(n)
			if count <= ctx.Rules.TickComplexity {
				continue
			}
			issues = append(issues, models.Issue{
				Type:        models.IssueTickAbuse,
				ProgramPath: p.Path,
				NodeName:    n.Title,
				Description: fmt.Sprintf("Tick event has high complexity (%d connected nodes)", count),
				Severity:    tickSeverity(count),
				NodeID:      n.ID,
			})
		}
	}
	return issues
}

func tickSeverity(count int) models.Severity {
	switch {
	case count > 50:
		return models.SeverityCritical
	case count > 25:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}
