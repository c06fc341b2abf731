package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bplint/bplint/pkg/models"
)

func node(g *models.Graph, kind models.NodeKind, title string) *models.Node {
	n := g.AddNode(kind, title)
	n.AddPin("exec", models.PinInput, models.PinExec)
	n.AddPin("then", models.PinOutput, models.PinExec)
	return n
}

func link(a, b *models.Node) {
	models.Connect(a.FindPin("then"), b.FindPin("exec"))
}

func TestCountConnectedLinearChain(t *testing.T) {
	g := &models.Graph{Name: "EventGraph"}
	a := node(g, models.NodeEvent, "A")
	b := node(g, models.NodeCallFunction, "B")
	c := node(g, models.NodeCallFunction, "C")
	link(a, b)
	link(b, c)

	assert.Equal(t, 3, CountConnected(a))
	assert.Equal(t, 2, CountConnected(b))
	assert.Equal(t, 1, CountConnected(c))
}

func TestCountConnectedDiamond(t *testing.T) {
	g := &models.Graph{Name: "EventGraph"}
	top := node(g, models.NodeBranch, "Branch")
	top.AddPin("else", models.PinOutput, models.PinExec)
	left := node(g, models.NodeCallFunction, "Left")
	right := node(g, models.NodeCallFunction, "Right")
	bottom := node(g, models.NodeCallFunction, "Bottom")

	models.Connect(top.FindPin("then"), left.FindPin("exec"))
	models.Connect(top.FindPin("else"), right.FindPin("exec"))
	link(left, bottom)
	link(right, bottom)

	assert.Equal(t, 4, CountConnected(top))
}

func TestCountConnectedCycle(t *testing.T) {
	g := &models.Graph{Name: "EventGraph"}
	a := node(g, models.NodeCallFunction, "A")
	b := node(g, models.NodeCallFunction, "B")
	link(a, b)
	link(b, a)

	assert.Equal(t, 2, CountConnected(a))
	assert.Equal(t, 0, CountConnected(nil))
}

func TestCountConnectedIgnoresDataPins(t *testing.T) {
	g := &models.Graph{Name: "EventGraph"}
	a := node(g, models.NodeCallFunction, "A")
	b := node(g, models.NodeCallFunction, "B")
	out := a.AddPin("value", models.PinOutput, models.PinData)
	in := b.AddPin("value", models.PinInput, models.PinData)
	models.Connect(out, in)

	assert.Equal(t, 1, CountConnected(a))
}

func TestInContext(t *testing.T) {
	g := &models.Graph{Name: "EventGraph"}
	tick := node(g, models.NodeEvent, "Event Tick")
	tick.Member = "ReceiveTick"
	mid := node(g, models.NodeCallFunction, "Mid")
	leaf := node(g, models.NodeDynamicCast, "Cast")
	link(tick, mid)
	link(mid, leaf)

	isTick := func(n *models.Node) bool { return n.Member == "ReceiveTick" }

	assert.True(t, InContext(leaf, isTick))
	assert.True(t, InContext(tick, isTick))
	assert.False(t, InContext(leaf, func(n *models.Node) bool { return false }))
	assert.False(t, InContext(nil, isTick))
}

func TestInContextCycle(t *testing.T) {
	g := &models.Graph{Name: "EventGraph"}
	a := node(g, models.NodeCallFunction, "A")
	b := node(g, models.NodeCallFunction, "B")
	link(a, b)
	link(b, a)

	assert.False(t, InContext(a, func(n *models.Node) bool { return n.Title == "C" }))
	assert.True(t, InContext(a, func(n *models.Node) bool { return n.Title == "B" }))
}
