package detector

import (
	"fmt"

	"github.com/bplint/bplint/internal/registry"
	"github.com/bplint/bplint/pkg/models"
)

func testContext() *Context {
	return &Context{
		Registry: registry.New(),
		Rules:    DefaultRuleset(),
		RootPath: "/Game",
	}
}

func testProgram(name string) *models.Program {
	return &models.Program{
		Path: "/Game/" + name,
		Name: name,
	}
}

// execNode adds a node carrying one exec input and one exec output.
func execNode(g *models.Graph, kind models.NodeKind, title string) *models.Node {
	n := g.AddNode(kind, title)
	n.AddPin("exec", models.PinInput, models.PinExec)
	n.AddPin("then", models.PinOutput, models.PinExec)
	return n
}

// eventNode adds an entry-shaped node: exec output only.
func eventNode(g *models.Graph, kind models.NodeKind, title, member string) *models.Node {
	n := g.AddNode(kind, title)
	n.Member = member
	n.AddPin("then", models.PinOutput, models.PinExec)
	return n
}

func tickNode(g *models.Graph) *models.Node {
	return eventNode(g, models.NodeEvent, "Event Tick", "ReceiveTick")
}

// wire connects a's exec output to b's exec input.
func wire(a, b *models.Node) {
	models.Connect(a.FindPin("then"), b.FindPin("exec"))
}

// chainAfter appends count exec nodes in a line after start and returns
// the last one.
func chainAfter(g *models.Graph, start *models.Node, count int) *models.Node {
	prev := start
	for i := 0; i < count; i++ {
		n := execNode(g, models.NodeCallFunction, fmt.Sprintf("Step %d", i))
		n.Member = fmt.Sprintf("Step%d", i)
		wire(prev, n)
		prev = n
	}
	return prev
}

func castNode(g *models.Graph, class string, hard bool) *models.Node {
	n := execNode(g, models.NodeDynamicCast, "Cast To "+class)
	n.Cast = &models.CastTarget{Class: class, Actor: hard}
	return n
}

func issueDescriptions(issues []models.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Description)
	}
	return out
}
