// Package models defines the graph data model shared by the linter core and
// its host: programs, graphs, nodes, pins, and the issues detectors emit.
package models

// PinDirection indicates which side of a node a pin sits on.
type PinDirection int8

const (
	PinInput PinDirection = iota
	PinOutput
)

// PinKind classifies what a pin carries.
type PinKind int8

const (
	PinExec     PinKind = iota // control flow
	PinData                    // values
	PinDelegate                // event bindings
)

// NodeKind is a closed tag for node dispatch. Detectors switch on the kind
// rather than probing runtime types, so every node the host hands us must
// carry one of these values.
type NodeKind int8

const (
	NodeOther NodeKind = iota
	NodeEvent
	NodeCustomEvent
	NodeBoundEvent // component- or input-bound events, fired by the host runtime
	NodeFunctionEntry
	NodeFunctionResult
	NodeCallFunction
	NodeVariableGet
	NodeVariableSet
	NodeDynamicCast
	NodeLoop
	NodeBranch
	NodeMacroInstance
	NodeTunnel // macro entry/exit
	NodeAddDelegate
	NodeAssignDelegate
	NodeCallDelegate
	NodeRemoveDelegate
	NodeClearDelegate
	NodeLiteral
)

var nodeKindNames = map[NodeKind]string{
	NodeOther:          "other",
	NodeEvent:          "event",
	NodeCustomEvent:    "custom_event",
	NodeBoundEvent:     "bound_event",
	NodeFunctionEntry:  "function_entry",
	NodeFunctionResult: "function_result",
	NodeCallFunction:   "call_function",
	NodeVariableGet:    "variable_get",
	NodeVariableSet:    "variable_set",
	NodeDynamicCast:    "dynamic_cast",
	NodeLoop:           "loop",
	NodeBranch:         "branch",
	NodeMacroInstance:  "macro_instance",
	NodeTunnel:         "tunnel",
	NodeAddDelegate:    "add_delegate",
	NodeAssignDelegate: "assign_delegate",
	NodeCallDelegate:   "call_delegate",
	NodeRemoveDelegate: "remove_delegate",
	NodeClearDelegate:  "clear_delegate",
	NodeLiteral:        "literal",
}

func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return "other"
}

// IsDelegate reports whether the node binds, unbinds, or invokes a
// multicast delegate property.
func (k NodeKind) IsDelegate() bool {
	switch k {
	case NodeAddDelegate, NodeAssignDelegate, NodeCallDelegate, NodeRemoveDelegate, NodeClearDelegate:
		return true
	}
	return false
}

// BindsDelegate reports whether the node attaches a handler to a delegate
// (as opposed to calling or clearing it).
func (k NodeKind) BindsDelegate() bool {
	return k == NodeAddDelegate || k == NodeAssignDelegate
}

// Pin is a typed, directional connection point on a node. A pin may link to
// any number of peer pins; exec pins are typically single-link, data pins
// may fan out.
type Pin struct {
	Name      string
	Direction PinDirection
	Kind      PinKind
	Links     []*Pin

	owner *Node
}

// Node returns the node owning this pin.
func (p *Pin) Node() *Node { return p.owner }

// Connected reports whether the pin has at least one link.
func (p *Pin) Connected() bool { return len(p.Links) > 0 }

// Connect links two pins bidirectionally. Callers are responsible for
// direction sanity (output to input); the model does not validate it.
func Connect(a, b *Pin) {
	a.Links = append(a.Links, b)
	b.Links = append(b.Links, a)
}

// CastTarget describes the class a dynamic cast narrows to. The host
// classifies the target; the core never inspects class hierarchies itself.
type CastTarget struct {
	Class     string `yaml:"class"`
	Interface bool   `yaml:"interface,omitempty"`
	Actor     bool   `yaml:"actor,omitempty"`
	Component bool   `yaml:"component,omitempty"`
}

// HardReference reports whether casting to this target pins a concrete
// actor or component class rather than an interface.
func (c *CastTarget) HardReference() bool {
	if c == nil || c.Interface {
		return false
	}
	return c.Actor || c.Component
}

// Node is one typed unit of computation or control flow.
type Node struct {
	// ID is a stable unique identifier used for navigation. Detectors do
	// not depend on it semantically; it may be empty.
	ID    string
	Kind  NodeKind
	Title string

	// Member is the referenced member name, tagged by Kind: the function
	// name for events and calls, the variable name for get/set, the
	// delegate property name for delegate nodes.
	Member string

	// TimerFunction carries a handler name referenced by string on
	// timer-style call nodes, or empty.
	TimerFunction string

	// Cast is set on NodeDynamicCast nodes only.
	Cast *CastTarget

	// Pure marks side-effect-free nodes that carry no exec pins.
	Pure bool

	Pins []*Pin
}

// AddPin appends a new pin to the node and returns it.
func (n *Node) AddPin(name string, dir PinDirection, kind PinKind) *Pin {
	p := &Pin{Name: name, Direction: dir, Kind: kind, owner: n}
	n.Pins = append(n.Pins, p)
	return p
}

// FindPin returns the first pin with the given name, or nil.
func (n *Node) FindPin(name string) *Pin {
	for _, p := range n.Pins {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// DelegatePin returns the delegate-kind input pin used to bind handlers,
// or nil if the node has none.
func (n *Node) DelegatePin() *Pin {
	for _, p := range n.Pins {
		if p.Kind == PinDelegate && p.Direction == PinInput {
			return p
		}
	}
	return nil
}

// HasExecPins reports whether the node carries any exec pin.
func (n *Node) HasExecPins() bool {
	for _, p := range n.Pins {
		if p.Kind == PinExec {
			return true
		}
	}
	return false
}

// HasConnection reports whether any pin on the node has a link.
func (n *Node) HasConnection() bool {
	for _, p := range n.Pins {
		if p.Connected() {
			return true
		}
	}
	return false
}

// GraphKind categorizes a graph within a program.
type GraphKind int8

const (
	EventGraph GraphKind = iota
	FunctionGraph
	MacroGraph
)

func (k GraphKind) String() string {
	switch k {
	case FunctionGraph:
		return "function"
	case MacroGraph:
		return "macro"
	default:
		return "event"
	}
}

// Graph is a named, directed collection of nodes.
type Graph struct {
	Name  string
	Kind  GraphKind
	Nodes []*Node
}

// AddNode appends a new node to the graph and returns it.
func (g *Graph) AddNode(kind NodeKind, title string) *Node {
	n := &Node{Kind: kind, Title: title}
	g.Nodes = append(g.Nodes, n)
	return n
}

// Variable is a program-level variable declaration.
type Variable struct {
	Name              string `yaml:"name"`
	TypeTag           string `yaml:"type"`
	MulticastDelegate bool   `yaml:"multicast_delegate,omitempty"`
}

// InterfaceDesc declares the function signatures an interface mandates.
type InterfaceDesc struct {
	Name      string   `yaml:"name"`
	Functions []string `yaml:"functions"`
}

// ClassInfo describes a native ancestor class the host knows about:
// its declared functions, implemented interfaces, and its own parent.
type ClassInfo struct {
	Name       string
	Super      *ClassInfo
	Functions  []string
	Interfaces []InterfaceDesc
}

// DeclaresFunction reports whether the class or any ancestor declares the
// named function. Used to recognize overrides of parent virtuals.
func (c *ClassInfo) DeclaresFunction(name string) bool {
	for cur := c; cur != nil; cur = cur.Super {
		for _, fn := range cur.Functions {
			if fn == name {
				return true
			}
		}
	}
	return false
}

// InheritsFrom reports whether the class chain contains the named class.
func (c *ClassInfo) InheritsFrom(name string) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur.Name == name {
			return true
		}
	}
	return false
}

// InterfaceMandates reports whether any interface implemented by the class
// or its ancestors declares the named function.
func (c *ClassInfo) InterfaceMandates(name string) bool {
	for cur := c; cur != nil; cur = cur.Super {
		for _, iface := range cur.Interfaces {
			for _, fn := range iface.Functions {
				if fn == name {
					return true
				}
			}
		}
	}
	return false
}

// ProgramKind distinguishes ordinary programs from pure interface
// declarations, whose graphs are contracts rather than executable flow.
type ProgramKind int8

const (
	ProgramNormal ProgramKind = iota
	ProgramInterface
)

// Program is one analyzable unit: a named visual script owning graphs,
// variables, an optional parent class, and implemented interfaces. A
// program is immutable for the duration of one detector pass.
type Program struct {
	Path string // owning path, e.g. /Game/Characters/BP_Hero
	Name string
	Kind ProgramKind

	EventGraphs    []*Graph
	FunctionGraphs []*Graph
	MacroGraphs    []*Graph

	Variables  []Variable
	Parent     *ClassInfo
	Interfaces []InterfaceDesc
}

// AllGraphs returns event, function, and macro graphs in declaration order.
func (p *Program) AllGraphs() []*Graph {
	all := make([]*Graph, 0, len(p.EventGraphs)+len(p.FunctionGraphs)+len(p.MacroGraphs))
	all = append(all, p.EventGraphs...)
	all = append(all, p.FunctionGraphs...)
	all = append(all, p.MacroGraphs...)
	return all
}

// HasGraphs reports whether the program has anything to analyze.
func (p *Program) HasGraphs() bool {
	return len(p.EventGraphs) > 0 || len(p.FunctionGraphs) > 0 || len(p.MacroGraphs) > 0
}

// ImplementsTransitively reports whether the named function is mandated by
// any interface implemented by the program or by its ancestor classes.
func (p *Program) ImplementsTransitively(name string) bool {
	for _, iface := range p.Interfaces {
		for _, fn := range iface.Functions {
			if fn == name {
				return true
			}
		}
	}
	return p.Parent.InterfaceMandates(name)
}
