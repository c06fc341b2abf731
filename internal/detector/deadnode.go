package detector

import (
	"fmt"

	"github.com/bplint/bplint/pkg/models"
)

// DeadNode finds declared-but-unreachable program elements: variable reads
// that feed nothing, custom events nobody calls or binds, and variables
// and event dispatchers nobody touches.
type DeadNode struct{}

func (d *DeadNode) Type() models.IssueType { return models.IssueDeadNode }

func (d *DeadNode) Detect(ctx *Context, p *models.Program) []models.Issue {
	var issues []models.Issue

	// Pass one collects every local reference. Call and delegate targets
	// also flow into the scan-wide registry so other programs' detectors
	// see them; the registry only ever grows within a scan.
	referencedVars := make(map[string]struct{})
	localFns := make(map[string]struct{})
	boundEventIDs := make(map[string]struct{})

	for _, g := range p.AllGraphs() {
		for _, n := range g.Nodes {
			switch n.Kind {
			case models.NodeVariableGet:
				if hasConnectedOutput(n) {
					referencedVars[n.Member] = struct{}{}
				}
			case models.NodeVariableSet:
				referencedVars[n.Member] = struct{}{}
			case models.NodeCallFunction:
				localFns[n.Member] = struct{}{}
				ctx.Registry.AddCall(n.Member)
				if n.TimerFunction != "" {
					localFns[n.TimerFunction] = struct{}{}
					ctx.Registry.AddReference(n.TimerFunction)
				}
			default:
				if n.Kind.IsDelegate() {
					localFns[n.Member] = struct{}{}
					ctx.Registry.AddReference(n.Member)
					if n.Kind.BindsDelegate() {
						collectBoundHandlers(n, localFns, boundEventIDs, ctx)
					}
				}
			}
		}
	}

	// Pass two reports what pass one never referenced.
	for _, g := range p.AllGraphs() {
		for _, n := range g.Nodes {
			switch n.Kind {
			case models.NodeVariableGet:
				if !n.HasConnection() {
					issues = append(issues, models.Issue{
						Type:        models.IssueDeadNode,
						ProgramPath: p.Path,
						NodeName:    n.Title,
						Description: fmt.Sprintf("Variable '%s' is retrieved but never used", n.Member),
						Severity:    models.SeverityLow,
						NodeID:      n.ID,
					})
				}
			case models.NodeEvent, models.NodeCustomEvent:
				name := n.Member
				if name == "" || ctx.Rules.IsLifecycleHook(name) {
					continue
				}
				if p.ImplementsTransitively(name) {
					continue
				}
				if _, ok := localFns[name]; ok {
					continue
				}
				if ctx.Registry.Referenced(name) {
					continue
				}
				if _, bound := boundEventIDs[n.ID]; bound {
					continue
				}
				issues = append(issues, models.Issue{
					Type:        models.IssueDeadNode,
					ProgramPath: p.Path,
					NodeName:    n.Title,
					Description: fmt.Sprintf("Custom event '%s' is defined but never called", name),
					Severity:    models.SeverityLow,
					NodeID:      n.ID,
				})
			}
		}
	}

	for _, v := range p.Variables {
		if _, ok := referencedVars[v.Name]; ok {
			continue
		}
		if _, ok := localFns[v.Name]; ok {
			// Dispatcher properties referenced through delegate nodes.
			continue
		}
		if v.MulticastDelegate && ctx.Registry.Referenced(v.Name) {
			continue
		}
		desc := fmt.Sprintf("Blueprint variable '%s' is declared but never used", v.Name)
		if v.MulticastDelegate {
			desc = fmt.Sprintf("Event dispatcher '%s' is declared but never used", v.Name)
		}
		issues = append(issues, models.Issue{
			Type:        models.IssueDeadNode,
			ProgramPath: p.Path,
			NodeName:    v.Name,
			Description: desc,
			Severity:    models.SeverityLow,
		})
	}

	return issues
}

// collectBoundHandlers records the custom events wired into a delegate
// binding node, both by name and by identifier. The identifier matters for
// anonymous handlers whose names collide.
func collectBoundHandlers(bind *models.Node, localFns map[string]struct{}, boundIDs map[string]struct{}, ctx *Context) {
	dp := bind.DelegatePin()
	if dp == nil {
		return
	}
	for _, link := range dp.Links {
		handler := link.Node()
		if handler == nil {
			continue
		}
		if handler.Kind == models.NodeCustomEvent || handler.Kind == models.NodeEvent {
			localFns[handler.Member] = struct{}{}
			ctx.Registry.AddReference(handler.Member)
			if handler.ID != "" {
				boundIDs[handler.ID] = struct{}{}
			}
		}
	}
}

func hasConnectedOutput(n *models.Node) bool {
	for _, pin := range n.Pins {
		if pin.Direction == models.PinOutput && pin.Connected() {
			return true
		}
	}
	return false
}
