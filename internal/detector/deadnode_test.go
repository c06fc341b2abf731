package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bplint/bplint/internal/registry"
	"github.com/bplint/bplint/pkg/models"
)

func TestDeadNodeUnconnectedVariableGet(t *testing.T) {
	p := testProgram("BP_Hero")
	g := &models.Graph{Name: "EventGraph", Kind: models.EventGraph}
	p.EventGraphs = []*models.Graph{g}

	get := g.AddNode(models.NodeVariableGet, "Get Health")
	get.Member = "Health"
	get.AddPin("value", models.PinOutput, models.PinData)

	issues := (&DeadNode{}).Detect(testContext(), p)

	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueDeadNode, issues[0].Type)
	assert.Equal(t, models.SeverityLow, issues[0].Severity)
	assert.Contains(t, issues[0].Description, "'Health' is retrieved but never used")
}

func TestDeadNodeConnectedVariableGetNotReported(t *testing.T) {
	p := testProgram("BP_Hero")
	g := &models.Graph{Name: "EventGraph", Kind: models.EventGraph}
	p.EventGraphs = []*models.Graph{g}

	get := g.AddNode(models.NodeVariableGet, "Get Health")
	get.Member = "Health"
	out := get.AddPin("value", models.PinOutput, models.PinData)

	branch := execNode(g, models.NodeBranch, "Branch")
	cond := branch.AddPin("condition", models.PinInput, models.PinData)
	models.Connect(out, cond)

	issues := (&DeadNode{}).Detect(testContext(), p)
	assert.Empty(t, issues)
}

func TestDeadNodeCustomEvents(t *testing.T) {
	tests := []struct {
		name      string
		event     string
		calledBy  string // member of a local call node, empty for none
		wantIssue bool
	}{
		{name: "uncalled custom event", event: "OnDamaged", wantIssue: true},
		{name: "locally called custom event", event: "OnDamaged", calledBy: "OnDamaged", wantIssue: false},
		{name: "lifecycle hook", event: "ReceiveBeginPlay", wantIssue: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProgram("BP_Hero")
			g := &models.Graph{Name: "EventGraph", Kind: models.EventGraph}
			p.EventGraphs = []*models.Graph{g}

			eventNode(g, models.NodeCustomEvent, tt.event, tt.event)
			if tt.calledBy != "" {
				call := execNode(g, models.NodeCallFunction, tt.calledBy)
				call.Member = tt.calledBy
			}

			issues := (&DeadNode{}).Detect(testContext(), p)
			if tt.wantIssue {
				require.Len(t, issues, 1)
				assert.Contains(t, issues[0].Description, "defined but never called")
			} else {
				assert.Empty(t, issues)
			}
		})
	}
}

func TestDeadNodeDelegateBoundEventNotReported(t *testing.T) {
	p := testProgram("BP_Door")
	g := &models.Graph{Name: "EventGraph", Kind: models.EventGraph}
	p.EventGraphs = []*models.Graph{g}

	handler := eventNode(g, models.NodeCustomEvent, "HandleOpened", "HandleOpened")
	handler.ID = "ev-1"
	handlerOut := handler.AddPin("delegate", models.PinOutput, models.PinDelegate)

	bind := execNode(g, models.NodeAddDelegate, "Bind Event to OnOpened")
	bind.Member = "OnOpened"
	bindIn := bind.AddPin("event", models.PinInput, models.PinDelegate)
	models.Connect(handlerOut, bindIn)

	issues := (&DeadNode{}).Detect(testContext(), p)
	assert.Empty(t, issues)
}

func TestDeadNodeInterfaceEventNotReported(t *testing.T) {
	p := testProgram("BP_Switch")
	p.Interfaces = []models.InterfaceDesc{{Name: "BPI_Interact", Functions: []string{"OnInteract"}}}
	g := &models.Graph{Name: "EventGraph", Kind: models.EventGraph}
	p.EventGraphs = []*models.Graph{g}

	eventNode(g, models.NodeEvent, "OnInteract", "OnInteract")

	issues := (&DeadNode{}).Detect(testContext(), p)
	assert.Empty(t, issues)
}

func TestDeadNodeUnusedVariables(t *testing.T) {
	p := testProgram("BP_Hero")
	p.Variables = []models.Variable{
		{Name: "Health", TypeTag: "float"},
		{Name: "Stamina", TypeTag: "float"},
		{Name: "OnDied", TypeTag: "delegate", MulticastDelegate: true},
	}
	g := &models.Graph{Name: "EventGraph", Kind: models.EventGraph}
	p.EventGraphs = []*models.Graph{g}

	set := execNode(g, models.NodeVariableSet, "Set Health")
	set.Member = "Health"

	issues := (&DeadNode{}).Detect(testContext(), p)

	descs := issueDescriptions(issues)
	assert.Contains(t, descs, "Blueprint variable 'Stamina' is declared but never used")
	assert.Contains(t, descs, "Event dispatcher 'OnDied' is declared but never used")
	assert.NotContains(t, descs, "Blueprint variable 'Health' is declared but never used")
}

func TestDeadNodeDispatcherReferencedByDelegateNode(t *testing.T) {
	p := testProgram("BP_Hero")
	p.Variables = []models.Variable{
		{Name: "OnDied", TypeTag: "delegate", MulticastDelegate: true},
	}
	g := &models.Graph{Name: "EventGraph", Kind: models.EventGraph}
	p.EventGraphs = []*models.Graph{g}

	call := execNode(g, models.NodeCallDelegate, "Call OnDied")
	call.Member = "OnDied"

	issues := (&DeadNode{}).Detect(testContext(), p)
	assert.Empty(t, issues)
}

func TestDeadNodeIdempotentAcrossRuns(t *testing.T) {
	p := testProgram("BP_Hero")
	p.Variables = []models.Variable{{Name: "Stamina", TypeTag: "float"}}
	g := &models.Graph{Name: "EventGraph", Kind: models.EventGraph}
	p.EventGraphs = []*models.Graph{g}
	eventNode(g, models.NodeCustomEvent, "OnDamaged", "OnDamaged")

	first := (&DeadNode{}).Detect(testContext(), p)

	ctx := testContext()
	ctx.Registry = registry.New()
	second := (&DeadNode{}).Detect(ctx, p)

	assert.Equal(t, first, second)
}
