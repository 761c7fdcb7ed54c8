package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/idgen"
)

func fixedIDs() idgen.Source {
	return &idgen.Sequence{ProcessID: "proc-test", Seed: "ab"}
}

func containsEdge(statements []string, source, target string) bool {
	needle := "{id:'" + source + "'}) WITH a MATCH (b {id:'" + target + "'})"
	for _, s := range statements {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func TestTransform_S1_TwoTasksLinked(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "t1", "type": "userTask", "name": "First"},
				map[string]any{"id": "t2", "type": "serviceTask", "name": "Second"},
				map[string]any{"id": "f1", "type": "sequenceFlow", "source": "t1", "target": "t2"},
			},
		},
	}

	tr := New(Options{IDSource: fixedIDs()})
	res, err := tr.Transform(raw)

	require.NoError(t, err)
	assert.Equal(t, 2, res.NodeCount)
	assert.Equal(t, 1, res.EdgeCount)
	assert.True(t, containsEdge(res.Statements, "t1", "t2"))
}

func TestTransform_S2_XORSplit(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "start", "type": "startEvent", "name": "Start"},
				map[string]any{"id": "gw", "type": "exclusiveGateway", "name": "Decide"},
				map[string]any{"id": "a", "type": "task", "name": "Branch A"},
				map[string]any{"id": "b", "type": "task", "name": "Branch B"},
				map[string]any{"id": "f1", "type": "sequenceFlow", "source": "start", "target": "gw"},
				map[string]any{"id": "f2", "type": "sequenceFlow", "source": "gw", "target": "a"},
				map[string]any{"id": "f3", "type": "sequenceFlow", "source": "gw", "target": "b"},
			},
		},
	}

	tr := New(Options{IDSource: fixedIDs()})
	res, err := tr.Transform(raw)

	require.NoError(t, err)
	splitEdges := 0
	for _, s := range res.Statements {
		if strings.Contains(s, "XOR_SPLIT") {
			splitEdges++
		}
	}
	assert.Equal(t, 2, splitEdges)
}

func TestTransform_S3_GatewayChainSynthesizesInvisibleTask(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "start", "type": "startEvent", "name": "Start"},
				map[string]any{"id": "xor", "type": "exclusiveGateway", "name": "XOR"},
				map[string]any{"id": "and", "type": "parallelGateway", "name": "AND"},
				map[string]any{"id": "task", "type": "task", "name": "Work"},
				map[string]any{"id": "end", "type": "endEvent", "name": "End"},
				map[string]any{"id": "f1", "type": "sequenceFlow", "source": "start", "target": "xor"},
				map[string]any{"id": "f2", "type": "sequenceFlow", "source": "xor", "target": "and"},
				map[string]any{"id": "f3", "type": "sequenceFlow", "source": "and", "target": "task"},
				map[string]any{"id": "f4", "type": "sequenceFlow", "source": "task", "target": "end"},
			},
		},
	}

	tr := New(Options{IDSource: fixedIDs()})
	res, err := tr.Transform(raw)

	require.NoError(t, err)

	invisibleNodes := 0
	for _, s := range res.Statements {
		if strings.Contains(s, "InvisibleTask") {
			invisibleNodes++
		}
	}
	assert.Equal(t, 1, invisibleNodes, "exactly one invisible task must be synthesized")
	assert.False(t, containsEdge(res.Statements, "xor", "and"), "no direct XOR->AND edge should exist")
}

func TestTransform_S4_MessageFlowAcrossPools(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "t1", "type": "task", "name": "Send", "pool_id": "p1"},
				map[string]any{"id": "t2", "type": "task", "name": "Receive", "pool_id": "p2"},
			},
			"messageFlows": []any{
				map[string]any{"id": "m1", "type": "messageFlow", "source": "t1", "target": "t2"},
			},
			"pools": []any{
				map[string]any{"id": "p1", "name": "Sender Pool"},
				map[string]any{"id": "p2", "name": "Receiver Pool"},
			},
		},
	}

	tr := New(Options{IDSource: fixedIDs()})
	res, err := tr.Transform(raw)

	require.NoError(t, err)
	found := false
	for _, s := range res.Statements {
		if strings.Contains(s, "MESSAGE_FLOW") {
			found = true
		}
	}
	assert.True(t, found)
	for _, d := range res.SemanticDiagnostics {
		assert.NotEqual(t, "BPMN 0301", d.Code)
	}
}

func TestTransform_S5_DuplicateIDsWithAutoFix(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "t", "type": "task", "name": "First"},
				map[string]any{"id": "t", "type": "task", "name": "Second"},
				map[string]any{"id": "f1", "type": "sequenceFlow", "source": "t", "target": "t"},
			},
		},
	}

	tr := New(Options{IDSource: fixedIDs(), AutoFix: true})
	res, err := tr.Transform(raw)

	require.NoError(t, err)
	assert.Equal(t, 2, res.NodeCount)
}

func TestTransform_S6_OrphanNodeStillEmitted(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "t1", "type": "task", "name": "Orphan"},
			},
		},
	}

	tr := New(Options{IDSource: fixedIDs()})
	res, err := tr.Transform(raw)

	require.NoError(t, err)
	assert.Equal(t, 1, res.NodeCount)
	assert.Equal(t, 0, res.EdgeCount)

	hasOrphanWarning := false
	for _, d := range res.SemanticDiagnostics {
		if d.Code == "Style orphan" {
			hasOrphanWarning = true
		}
	}
	assert.True(t, hasOrphanWarning)
}

func TestTransform_EmptyDocumentProducesZeroStatements(t *testing.T) {
	raw := map[string]any{}

	tr := New(Options{IDSource: fixedIDs()})
	res, err := tr.Transform(raw)

	require.NoError(t, err)
	assert.Empty(t, res.Statements)
	assert.Equal(t, 0, res.NodeCount)
	assert.Equal(t, 0, res.EdgeCount)
}

func TestTransform_CycleInSequenceFlowCompletesWithWarning(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "a", "type": "task", "name": "A"},
				map[string]any{"id": "b", "type": "task", "name": "B"},
				map[string]any{"id": "c", "type": "task", "name": "C"},
				map[string]any{"id": "f1", "type": "sequenceFlow", "source": "a", "target": "b"},
				map[string]any{"id": "f2", "type": "sequenceFlow", "source": "b", "target": "c"},
				map[string]any{"id": "f3", "type": "sequenceFlow", "source": "c", "target": "a"},
			},
		},
	}

	tr := New(Options{IDSource: fixedIDs(), AutoFix: true})
	res, err := tr.Transform(raw)

	require.NoError(t, err)
	assert.Equal(t, 3, res.NodeCount)
	assert.Equal(t, 3, res.EdgeCount)

	found := false
	for _, w := range res.SchemaWarnings {
		if strings.Contains(w, "circular") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTransform_BatchOutputConcatenatesToFullSequence(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "t1", "type": "task", "name": "A"},
				map[string]any{"id": "t2", "type": "task", "name": "B"},
				map[string]any{"id": "t3", "type": "task", "name": "C"},
				map[string]any{"id": "f1", "type": "sequenceFlow", "source": "t1", "target": "t2"},
				map[string]any{"id": "f2", "type": "sequenceFlow", "source": "t2", "target": "t3"},
			},
		},
	}

	tr := New(Options{IDSource: fixedIDs()})
	res, err := tr.Transform(raw)
	require.NoError(t, err)

	batches := res.BatchOutput(2)
	var reassembled []string
	for _, b := range batches {
		reassembled = append(reassembled, b...)
	}
	assert.Equal(t, res.Statements, reassembled)
}

func TestTransform_PreStructuredInputIsNearNoOp(t *testing.T) {
	raw := map[string]any{
		"activities": []any{
			map[string]any{"id": "t1", "name": "A", "type": "task"},
		},
		"events":   []any{},
		"gateways": []any{},
		"flows":    []any{},
		"pools":    []any{},
		"lanes":    []any{},
	}

	tr := New(Options{IDSource: fixedIDs()})
	res, err := tr.Transform(raw)

	require.NoError(t, err)
	assert.Equal(t, 1, res.NodeCount)
	assert.Empty(t, res.SchemaWarnings)
}

func TestTransform_SingleUseTransformerRejectsSecondCall(t *testing.T) {
	tr := New(Options{IDSource: fixedIDs()})
	_, err := tr.Transform(map[string]any{})
	require.NoError(t, err)

	_, err = tr.Transform(map[string]any{})
	require.Error(t, err)
}

func TestTransform_EventBasedGatewayBypassAppliesWhenGatewayIsTarget(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "start", "type": "startEvent", "name": "Start"},
				map[string]any{"id": "r", "type": "task", "name": "R"},
				map[string]any{"id": "x", "type": "task", "name": "X"},
				map[string]any{"id": "g", "type": "eventBasedGateway", "name": "Wait"},
				map[string]any{"id": "h", "type": "exclusiveGateway", "name": "H"},
				map[string]any{"id": "y", "type": "task", "name": "Y"},
				map[string]any{"id": "end", "type": "endEvent", "name": "End"},
				map[string]any{"id": "f0", "type": "sequenceFlow", "source": "start", "target": "r"},
				// r has two outgoing flows: one to the event-based gateway, one elsewhere.
				map[string]any{"id": "f1", "type": "sequenceFlow", "source": "r", "target": "g"},
				map[string]any{"id": "f2", "type": "sequenceFlow", "source": "r", "target": "x"},
				// g also sits in a gateway chain with h elsewhere in the graph.
				map[string]any{"id": "f3", "type": "sequenceFlow", "source": "g", "target": "h"},
				map[string]any{"id": "f4", "type": "sequenceFlow", "source": "g", "target": "y"},
				map[string]any{"id": "f5", "type": "sequenceFlow", "source": "h", "target": "end"},
			},
		},
	}

	tr := New(Options{IDSource: fixedIDs()})
	res, err := tr.Transform(raw)

	require.NoError(t, err)
	assert.True(t, containsEdge(res.Statements, "r", "y"),
		"event-based gateway bypass must apply even when the gateway is the flow's target, not just its source")
}

func TestTransform_NoDuplicateEdgePairs(t *testing.T) {
	raw := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "start", "type": "startEvent", "name": "Start"},
				map[string]any{"id": "gw", "type": "parallelGateway", "name": "Fork"},
				map[string]any{"id": "a", "type": "task", "name": "A"},
				map[string]any{"id": "join", "type": "parallelGateway", "name": "Join"},
				map[string]any{"id": "end", "type": "endEvent", "name": "End"},
				map[string]any{"id": "f1", "type": "sequenceFlow", "source": "start", "target": "gw"},
				map[string]any{"id": "f2", "type": "sequenceFlow", "source": "gw", "target": "a"},
				map[string]any{"id": "f3", "type": "sequenceFlow", "source": "a", "target": "join"},
				map[string]any{"id": "f4", "type": "sequenceFlow", "source": "join", "target": "end"},
			},
		},
	}

	tr := New(Options{IDSource: fixedIDs()})
	res, err := tr.Transform(raw)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, s := range res.Statements {
		if strings.Contains(s, "MATCH (a {id:") {
			assert.False(t, seen[s], "duplicate edge statement: %s", s)
			seen[s] = true
		}
	}
}
