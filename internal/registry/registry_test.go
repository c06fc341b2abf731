package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bplint/bplint/pkg/models"
)

func TestAddCallAndReference(t *testing.T) {
	r := New()

	assert.False(t, r.Referenced("ComputeDamage"))
	assert.Equal(t, 0, r.CallCount("ComputeDamage"))

	r.AddCall("ComputeDamage")
	r.AddCall("ComputeDamage")
	r.AddReference("OnDied")
	r.AddReference("")
	r.AddCall("")

	assert.True(t, r.Referenced("ComputeDamage"))
	assert.Equal(t, 2, r.CallCount("ComputeDamage"))
	assert.True(t, r.Referenced("OnDied"))
	assert.False(t, r.Referenced(""))
}

func TestBuildFromCorpus(t *testing.T) {
	g := &models.Graph{Name: "EventGraph"}

	call := g.AddNode(models.NodeCallFunction, "Compute Damage")
	call.Member = "ComputeDamage"

	timer := g.AddNode(models.NodeCallFunction, "Set Timer by Function Name")
	timer.Member = "SetTimerByFunctionName"
	timer.TimerFunction = "PollState"

	macro := g.AddNode(models.NodeMacroInstance, "Clamp Health")
	macro.Member = "ClampHealth"

	handler := g.AddNode(models.NodeCustomEvent, "HandleOpened")
	handler.Member = "HandleOpened"
	handlerPin := handler.AddPin("delegate", models.PinOutput, models.PinDelegate)

	bind := g.AddNode(models.NodeAddDelegate, "Bind Event to OnOpened")
	bind.Member = "OnOpened"
	bindPin := bind.AddPin("event", models.PinInput, models.PinDelegate)
	models.Connect(handlerPin, bindPin)

	unbind := g.AddNode(models.NodeClearDelegate, "Unbind All from OnClosed")
	unbind.Member = "OnClosed"

	p := &models.Program{Name: "BP_Door", Path: "/Game/BP_Door", EventGraphs: []*models.Graph{g}}

	r := New()
	assert.False(t, r.Built())
	r.BuildFromCorpus([]*models.Program{p, nil})
	assert.True(t, r.Built())

	assert.Equal(t, 1, r.CallCount("ComputeDamage"))
	assert.True(t, r.Referenced("PollState"))
	assert.True(t, r.Referenced("ClampHealth"))
	assert.True(t, r.Referenced("OnOpened"))
	assert.True(t, r.Referenced("HandleOpened"))
	assert.True(t, r.Referenced("OnClosed"))
	assert.False(t, r.Referenced("HandleClosed"))
}

func TestCollectProgramAccumulates(t *testing.T) {
	g := &models.Graph{Name: "EventGraph"}
	call := g.AddNode(models.NodeCallFunction, "Compute Damage")
	call.Member = "ComputeDamage"
	p := &models.Program{Name: "BP_A", EventGraphs: []*models.Graph{g}}

	r := New()
	r.CollectProgram(p)
	r.CollectProgram(p)

	// Revisiting a program within a scan increments counts again.
	assert.Equal(t, 2, r.CallCount("ComputeDamage"))
}
