package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectIsBidirectional(t *testing.T) {
	g := &Graph{Name: "EventGraph"}
	a := g.AddNode(NodeEvent, "Event BeginPlay")
	b := g.AddNode(NodeCallFunction, "Print String")

	out := a.AddPin("then", PinOutput, PinExec)
	in := b.AddPin("exec", PinInput, PinExec)

	assert.False(t, out.Connected())
	Connect(out, in)

	require.True(t, out.Connected())
	require.True(t, in.Connected())
	assert.Same(t, b, out.Links[0].Node())
	assert.Same(t, a, in.Links[0].Node())
	assert.True(t, a.HasConnection())
}

func TestNodePinHelpers(t *testing.T) {
	n := &Node{Kind: NodeAddDelegate, Title: "Bind Event"}
	n.AddPin("exec", PinInput, PinExec)
	n.AddPin("event", PinInput, PinDelegate)
	n.AddPin("out delegate", PinOutput, PinDelegate)

	assert.True(t, n.HasExecPins())
	require.NotNil(t, n.DelegatePin())
	assert.Equal(t, "event", n.DelegatePin().Name)
	assert.Nil(t, n.FindPin("missing"))

	pure := &Node{Kind: NodeCallFunction, Pure: true}
	pure.AddPin("value", PinOutput, PinData)
	assert.False(t, pure.HasExecPins())
}

func TestNodeKindHelpers(t *testing.T) {
	assert.True(t, NodeAddDelegate.IsDelegate())
	assert.True(t, NodeCallDelegate.IsDelegate())
	assert.False(t, NodeCallFunction.IsDelegate())

	assert.True(t, NodeAssignDelegate.BindsDelegate())
	assert.False(t, NodeCallDelegate.BindsDelegate())

	assert.Equal(t, "dynamic_cast", NodeDynamicCast.String())
	assert.Equal(t, "other", NodeKind(99).String())
}

func TestCastTargetHardReference(t *testing.T) {
	tests := []struct {
		name string
		cast *CastTarget
		want bool
	}{
		{"nil target", nil, false},
		{"actor class", &CastTarget{Class: "BP_Enemy", Actor: true}, true},
		{"component class", &CastTarget{Class: "HealthComponent", Component: true}, true},
		{"interface", &CastTarget{Class: "BPI_Interact", Interface: true, Actor: true}, false},
		{"plain object", &CastTarget{Class: "SaveGame"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cast.HardReference())
		})
	}
}

func TestClassInfoChain(t *testing.T) {
	actor := &ClassInfo{
		Name:       "Actor",
		Functions:  []string{"K2_DestroyActor"},
		Interfaces: []InterfaceDesc{{Name: "BPI_Saveable", Functions: []string{"OnSave"}}},
	}
	character := &ClassInfo{Name: "Character", Super: actor, Functions: []string{"TakeHit"}}

	assert.True(t, character.DeclaresFunction("TakeHit"))
	assert.True(t, character.DeclaresFunction("K2_DestroyActor"))
	assert.False(t, character.DeclaresFunction("Missing"))

	assert.True(t, character.InheritsFrom("Actor"))
	assert.True(t, character.InheritsFrom("Character"))
	assert.False(t, character.InheritsFrom("Pawn"))

	assert.True(t, character.InterfaceMandates("OnSave"))
	assert.False(t, character.InterfaceMandates("OnLoad"))

	var nilClass *ClassInfo
	assert.False(t, nilClass.DeclaresFunction("X"))
	assert.False(t, nilClass.InheritsFrom("X"))
	assert.False(t, nilClass.InterfaceMandates("X"))
}

func TestProgramGraphsAndInterfaces(t *testing.T) {
	p := &Program{
		Name:           "BP_Hero",
		EventGraphs:    []*Graph{{Name: "EventGraph"}},
		FunctionGraphs: []*Graph{{Name: "ComputeDamage", Kind: FunctionGraph}},
		MacroGraphs:    []*Graph{{Name: "Clamp", Kind: MacroGraph}},
		Interfaces:     []InterfaceDesc{{Name: "BPI_Interact", Functions: []string{"OnInteract"}}},
		Parent: &ClassInfo{
			Name:       "Character",
			Interfaces: []InterfaceDesc{{Name: "BPI_Saveable", Functions: []string{"OnSave"}}},
		},
	}

	all := p.AllGraphs()
	require.Len(t, all, 3)
	assert.Equal(t, "EventGraph", all[0].Name)
	assert.Equal(t, "Clamp", all[2].Name)
	assert.True(t, p.HasGraphs())
	assert.False(t, (&Program{}).HasGraphs())

	assert.True(t, p.ImplementsTransitively("OnInteract"))
	assert.True(t, p.ImplementsTransitively("OnSave"))
	assert.False(t, p.ImplementsTransitively("OnLoad"))
}
