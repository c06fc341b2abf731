// Package detector implements the five static checks run against each
// program: dead nodes, orphan nodes, cast abuse, tick abuse, and unused
// functions. Detectors never mutate the data model; they read one program
// plus the scan-scoped reference registry and emit issues.
package detector

import (
	"strings"

	"github.com/bplint/bplint/internal/registry"
	"github.com/bplint/bplint/pkg/models"
)

// Context is the per-scan state shared by all detector invocations. It is
// constructed by the orchestrator at scan start and discarded with the
// scan; detectors never reach for process-level globals.
type Context struct {
	// Registry accumulates corpus-wide function and delegate references.
	Registry *registry.Registry

	// Rules holds the naming heuristics and thresholds.
	Rules *Ruleset

	// RootPath is the logical prefix of the analyzed corpus. Functions in
	// programs outside it are never reported as unused.
	RootPath string

	// Corpus is the loaded program set, used by the unused-function
	// detector for its secondary cross-program scan. May be nil when that
	// detector is disabled.
	Corpus []*models.Program
}

// Detector is one independent analysis over a single program.
type Detector interface {
	Type() models.IssueType
	Detect(ctx *Context, p *models.Program) []models.Issue
}

// ForTypes returns detector instances for the enabled issue types, in the
// given order.
func ForTypes(types []models.IssueType) []Detector {
	var out []Detector
	for _, t := range types {
		switch t {
		case models.IssueDeadNode:
			out = append(out, &DeadNode{})
		case models.IssueOrphanNode:
			out = append(out, &OrphanNode{})
		case models.IssueCastAbuse:
			out = append(out, &CastAbuse{})
		case models.IssueTickAbuse:
			out = append(out, &TickAbuse{})
		case models.IssueUnusedFunction:
			out = append(out, &UnusedFunction{})
		}
	}
	return out
}

// Ruleset collects the naming conventions and thresholds the detectors
// lean on. These are heuristics carried over from editor conventions, not
// measured properties.
type Ruleset struct {
	// TickEventNames are the per-frame-update event names.
	TickEventNames []string

	// LifecycleHookPrefix marks host-invoked lifecycle events that never
	// need explicit callers.
	LifecycleHookPrefix string

	// FrequentGraphPatterns are substrings of graph names assumed to be
	// called often (a proxy, no call-frequency data behind it).
	FrequentGraphPatterns []string

	// EnginePatterns are substrings of function names owned by the host
	// runtime; such functions are never reported as unused.
	EnginePatterns []string

	// MacroSkipPrefixes marks host-generated macros.
	MacroSkipPrefixes []string

	// InterfaceProgramPrefix marks interface-declaring programs by name.
	InterfaceProgramPrefix string

	// PureSkipTitles are title substrings of pure nodes that legitimately
	// dangle: reroutes, return values, builder utilities.
	PureSkipTitles []string

	// ConstantTitleHints mark literal/constant-style node titles.
	ConstantTitleHints []string

	// ConstructionTitleHints mark construction-script entry nodes.
	ConstructionTitleHints []string

	// InputTitleHints mark input-binding event nodes, which the input
	// system triggers without an exec predecessor.
	InputTitleHints []string

	// EntryPointBases names singleton base classes skipped by the
	// unused-function detector.
	EntryPointBases []string

	// TickComplexity is the connected-node count a per-frame event may
	// reach before being reported.
	TickComplexity int
}

// DefaultRuleset returns the stock heuristics.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		TickEventNames:      []string{"ReceiveTick", "Tick"},
		LifecycleHookPrefix: "Receive",
		FrequentGraphPatterns: []string{
			"Update", "Process", "Calculate", "Check", "Validate", "GetCurrent", "IsValid",
		},
		EnginePatterns: []string{
			"GetPlayerState", "GetController", "GetPawn", "GetCharacter",
			"GetOwner", "GetGameInstance", "GetWorld", "GetLevel", "GetParent",
			"IsA", "IsValid", "K2_", "Execute", "Ubergraph",
			"UserConstructionScript", "ConstructionScript",
			"HasAuthority", "GetNetConnection", "GetNetMode", "IsNetMode",
		},
		MacroSkipPrefixes:      []string{"K2_", "Default__"},
		InterfaceProgramPrefix: "BPI_",
		PureSkipTitles: []string{
			"Reroute", "Set Return", "Return", "Make", "Select", "Append",
		},
		ConstantTitleHints:     []string{"Literal", "Constant"},
		ConstructionTitleHints: []string{"Construction Script"},
		InputTitleHints: []string{
			"Input Action", "Input Axis", "Enhanced Input", "IA_", "IM_",
			"Thumbstick", "Touch", "Pressed", "Released", "Key",
		},
		EntryPointBases: []string{"GameInstance"},
		TickComplexity:  10,
	}
}

// IsTickEvent reports whether the node is a per-frame-update event.
func (r *Ruleset) IsTickEvent(n *models.Node) bool {
	if n.Kind != models.NodeEvent {
		return false
	}
	for _, name := range r.TickEventNames {
		if n.Member == name {
			return true
		}
	}
	return false
}

// IsLoop reports whether the node is a loop construct: a native loop node
// or a loop macro instance.
func (r *Ruleset) IsLoop(n *models.Node) bool {
	if n.Kind == models.NodeLoop {
		return true
	}
	if n.Kind == models.NodeMacroInstance {
		return strings.Contains(n.Title, "Loop") || strings.Contains(n.Title, "For Each")
	}
	return false
}

// IsLifecycleHook reports whether the name follows the host's lifecycle
// naming convention.
func (r *Ruleset) IsLifecycleHook(name string) bool {
	return r.LifecycleHookPrefix != "" && strings.HasPrefix(name, r.LifecycleHookPrefix)
}

// IsFrequentGraph reports whether the graph name matches a frequently
// called naming pattern.
func (r *Ruleset) IsFrequentGraph(name string) bool {
	return containsAny(name, r.FrequentGraphPatterns)
}

// IsEngineFunction reports whether the function name matches a host
// runtime pattern.
func (r *Ruleset) IsEngineFunction(name string) bool {
	return containsAny(name, r.EnginePatterns)
}

// IsInterfaceProgram reports whether the program declares an interface
// rather than executable flow.
func (r *Ruleset) IsInterfaceProgram(p *models.Program) bool {
	return p.Kind == models.ProgramInterface ||
		(r.InterfaceProgramPrefix != "" && strings.HasPrefix(p.Name, r.InterfaceProgramPrefix))
}

// IsEntryPointProgram reports whether the program subclasses a designated
// singleton base type.
func (r *Ruleset) IsEntryPointProgram(p *models.Program) bool {
	for _, base := range r.EntryPointBases {
		if p.Parent.InheritsFrom(base) {
			return true
		}
	}
	return false
}

func containsAny(s string, patterns []string) bool {
	for _, pat := range patterns {
		if pat != "" && strings.Contains(s, pat) {
			return true
		}
	}
	return false
}
