package detector

import (
	"fmt"
	"strings"

	"github.com/bplint/bplint/pkg/models"
)

// UnusedFunction finds function and macro graphs nothing calls. The
// primary check consults the scan-wide registry built from the whole
// corpus; a secondary pass scans other programs' call nodes directly to
// catch references the registry's exact-name matching misses.
type UnusedFunction struct{}

func (d *UnusedFunction) Type() models.IssueType { return models.IssueUnusedFunction }

func (d *UnusedFunction) Detect(ctx *Context, p *models.Program) []models.Issue {
	if ctx.Rules.IsInterfaceProgram(p) {
		return nil
	}
	if ctx.Rules.IsEntryPointProgram(p) {
		return nil
	}
	if ctx.RootPath != "" && !strings.HasPrefix(p.Path, ctx.RootPath) {
		return nil
	}
	if !ctx.Registry.Built() {
		ctx.Registry.BuildFromCorpus(ctx.Corpus)
	}

	var issues []models.Issue
	for _, fg := range p.FunctionGraphs {
		name := fg.Name
		if ctx.Rules.IsLifecycleHook(name) || ctx.Rules.IsEngineFunction(name) {
			continue
		}
		if p.Parent.DeclaresFunction(name) {
			// Overrides are invoked through the parent signature.
			continue
		}
		if p.ImplementsTransitively(name) {
			continue
		}
		if ctx.Registry.Referenced(name) || ctx.Registry.CallCount(name) > 0 {
			continue
		}
		if calledElsewhere(ctx.Corpus, p, name) {
			continue
		}
		issues = append(issues, models.Issue{
			Type:        models.IssueUnusedFunction,
			ProgramPath: p.Path,
			NodeName:    name,
			Description: fmt.Sprintf("Function '%s' is defined but never called", name),
			Severity:    models.SeverityMedium,
		})
	}

	for _, mg := range p.MacroGraphs {
		name := mg.Name
		if hasAnyPrefix(name, ctx.Rules.MacroSkipPrefixes) {
			continue
		}
		if ctx.Registry.Referenced(name) {
			continue
		}
		issues = append(issues, models.Issue{
			Type:        models.IssueUnusedFunction,
			ProgramPath: p.Path,
			NodeName:    name,
			Description: fmt.Sprintf("Macro '%s' is defined but never used", name),
			Severity:    models.SeverityLow,
		})
	}

	return issues
}

// calledElsewhere scans other programs' call nodes for the name, matching
// exactly or as a substring. Substring matching over-approximates; a
// spurious hit suppresses a report rather than adding one.
func calledElsewhere(corpus []*models.Program, self *models.Program, name string) bool {
	for _, other := range corpus {
		if other == self {
			continue
		}
		for _, g := range other.AllGraphs() {
			for _, n := range g.Nodes {
				if n.Kind != models.NodeCallFunction {
					continue
				}
				if n.Member == name || strings.Contains(n.Member, name) {
					return true
				}
				if n.TimerFunction == name {
					return true
				}
			}
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, pre := range prefixes {
		if pre != "" && strings.HasPrefix(s, pre) {
			return true
		}
	}
	return false
}
