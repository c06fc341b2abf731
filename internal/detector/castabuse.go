package detector

import (
	"fmt"

	"github.com/bplint/bplint/internal/graph"
	"github.com/bplint/bplint/pkg/models"
)

// CastAbuse finds dynamic casts executed in hot contexts: per-frame events,
// loops, or frequently named graphs. Hard-reference casts in any such
// context are escalated since they also pin assets in memory.
type CastAbuse struct{}

func (d *CastAbuse) Type() models.IssueType { return models.IssueCastAbuse }

func (d *CastAbuse) Detect(ctx *Context, p *models.Program) []models.Issue {
	var issues []models.Issue
	for _, g := range p.AllGraphs() {
		for _, n := range g.Nodes {
			if n.Kind != models.NodeDynamicCast {
				continue
			}
			where, severity := d.classify(ctx, g, n)
			if where == "" {
				continue
			}
			kind := "Cast"
			if n.Cast.HardReference() {
				severity = models.SeverityHigh
				kind = "Hard-reference cast"
			}
			issues = append(issues, models.Issue{
				Type:        models.IssueCastAbuse,
				ProgramPath: p.Path,
				NodeName:    n.Title,
				Description: fmt.Sprintf("%s node '%s' may cause performance issues %s", kind, n.Title, where),
				Severity:    severity,
				NodeID:      n.ID,
			})
		}
	}
	return issues
}

// classify walks backward along exec flow from the cast. Tick context wins
// over loop context, loop context wins over the name heuristic.
func (d *CastAbuse) classify(ctx *Context, g *models.Graph, n *models.Node) (string, models.Severity) {
	if graph.InContext(n, ctx.Rules.IsTickEvent) {
		return "in Tick event context", models.SeverityHigh
	}
	if graph.InContext(n, ctx.Rules.IsLoop) {
		return "inside a loop", models.SeverityMedium
	}
	if g.Kind != models.EventGraph && ctx.Rules.IsFrequentGraph(g.Name) {
		return fmt.Sprintf("in frequently called function '%s'", g.Name), models.SeverityMedium
	}
	return "", ""
}
