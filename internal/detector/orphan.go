package detector

import (
	"fmt"

	"github.com/bplint/bplint/pkg/models"
)

// OrphanNode finds nodes disconnected from any flow: pure nodes whose
// outputs feed nothing, and execution nodes no exec wire reaches.
type OrphanNode struct{}

func (d *OrphanNode) Type() models.IssueType { return models.IssueOrphanNode }

func (d *OrphanNode) Detect(ctx *Context, p *models.Program) []models.Issue {
	// Interface programs hold signature stubs, not flow.
	if ctx.Rules.IsInterfaceProgram(p) {
		return nil
	}

	var issues []models.Issue
	for _, g := range p.AllGraphs() {
		for _, n := range g.Nodes {
			switch n.Kind {
			case models.NodeEvent, models.NodeCustomEvent, models.NodeBoundEvent,
				models.NodeFunctionEntry, models.NodeMacroInstance, models.NodeTunnel:
				// Entry points and macro plumbing are triggered externally.
				continue
			case models.NodeVariableGet:
				// Dangling variable reads are the dead-node check's concern.
				continue
			}

			if n.Pure || !n.HasExecPins() {
				if d.pureOrphan(ctx, n) {
					issues = append(issues, models.Issue{
						Type:        models.IssueOrphanNode,
						ProgramPath: p.Path,
						NodeName:    n.Title,
						Description: fmt.Sprintf("Pure node '%s' has no output connections", n.Title),
						Severity:    models.SeverityLow,
						NodeID:      n.ID,
					})
				}
				continue
			}

			if d.execOrphan(ctx, n) {
				issues = append(issues, models.Issue{
					Type:        models.IssueOrphanNode,
					ProgramPath: p.Path,
					NodeName:    n.Title,
					Description: fmt.Sprintf("Execution node '%s' is not connected to any execution flow", n.Title),
					Severity:    models.SeverityHigh,
					NodeID:      n.ID,
				})
			}
		}
	}
	return issues
}

// pureOrphan reports whether a pure node dangles: no output pin connected
// anywhere. Reroutes, returns, builder utilities, and literals are skipped
// since they dangle legitimately during editing.
func (d *OrphanNode) pureOrphan(ctx *Context, n *models.Node) bool {
	if n.Kind == models.NodeLiteral || n.Kind == models.NodeFunctionResult {
		return false
	}
	if containsAny(n.Title, ctx.Rules.PureSkipTitles) {
		return false
	}
	if containsAny(n.Title, ctx.Rules.ConstantTitleHints) {
		return false
	}
	return !hasConnectedOutput(n)
}

// execOrphan reports whether an execution node sits in no flow at all: it
// has exec pins and none of them, either direction, is connected.
func (d *OrphanNode) execOrphan(ctx *Context, n *models.Node) bool {
	if containsAny(n.Title, ctx.Rules.ConstructionTitleHints) {
		return false
	}
	if containsAny(n.Title, ctx.Rules.InputTitleHints) {
		return false
	}

	var execIn, execOut, connected bool
	for _, pin := range n.Pins {
		if pin.Kind != models.PinExec {
			continue
		}
		if pin.Direction == models.PinInput {
			execIn = true
		} else {
			execOut = true
		}
		if pin.Connected() {
			connected = true
		}
	}
	// Entry-shaped nodes fire without a predecessor.
	if execOut && !execIn {
		return false
	}
	return !connected
}
