package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/bpmnerr"
	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/bpmnjson"
)

func hasCode(diags []*bpmnerr.SemanticError, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestValidate_TwoTasksLinked(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "userTask", "name": "Fill form"},
			{"id": "t2", "type": "serviceTask", "name": "Submit"},
			{"id": "f1", "type": "sequenceFlow", "source": "t1", "target": "t2"},
		},
	}

	diags, err := Validate(doc, Options{})

	require.NoError(t, err)
	count := func(code string) int {
		n := 0
		for _, d := range diags {
			if d.Code == code {
				n++
			}
		}
		return n
	}
	// The link gives t2 its incoming and t1 its outgoing flow; t1 still
	// lacks an incoming flow and t2 an outgoing one.
	assert.Equal(t, 1, count("BPMN 0101"))
	assert.Equal(t, 1, count("BPMN 0102"))
}

func TestValidate_TaskMissingIncomingAndOutgoing(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "userTask", "name": "Orphan task"},
		},
	}

	diags, _ := Validate(doc, Options{})

	assert.True(t, hasCode(diags, "BPMN 0101"))
	assert.True(t, hasCode(diags, "BPMN 0102"))
	assert.True(t, hasCode(diags, "Style orphan"))
}

func TestValidate_StartEventWithIncomingIsError(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "s1", "type": "startEvent", "name": "Begin"},
			{"id": "t1", "type": "userTask", "name": "Work"},
			{"id": "f1", "type": "sequenceFlow", "source": "t1", "target": "s1"},
		},
	}

	diags, _ := Validate(doc, Options{})

	assert.True(t, hasCode(diags, "BPMN 0105"))
}

func TestValidate_StrictModeAggregatesErrors(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "userTask", "name": "Orphan"},
		},
	}

	_, err := Validate(doc, Options{Strict: true})

	require.Error(t, err)
	var aggErr *bpmnerr.SemanticValidationError
	require.ErrorAs(t, err, &aggErr)
	assert.NotEmpty(t, aggErr.Errors)
}

func TestValidate_MessageFlowAcrossPools(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "Send", "pool_id": "p1"},
			{"id": "t2", "type": "task", "name": "Receive", "pool_id": "p2"},
		},
		MessageFlows: []bpmnjson.RawElement{
			{"id": "m1", "type": "messageFlow", "source": "t1", "target": "t2"},
		},
	}

	diags, err := Validate(doc, Options{})

	require.NoError(t, err)
	assert.False(t, hasCode(diags, "BPMN 0301"))
}

func TestValidate_MessageFlowSamePoolIsError(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "Send", "pool_id": "p1"},
			{"id": "t2", "type": "task", "name": "Receive", "pool_id": "p1"},
		},
		MessageFlows: []bpmnjson.RawElement{
			{"id": "m1", "type": "messageFlow", "source": "t1", "target": "t2"},
		},
	}

	diags, _ := Validate(doc, Options{})

	assert.True(t, hasCode(diags, "BPMN 0301"))
}

func TestValidate_DuplicateStartEventsInSameScope(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "s1", "type": "startEvent", "name": "Begin A", "pool_id": "p1"},
			{"id": "s2", "type": "startEvent", "name": "Begin B", "pool_id": "p1"},
		},
	}

	diags, _ := Validate(doc, Options{})

	assert.True(t, hasCode(diags, "Style 01106"))
}

func TestValidate_DivergingParallelGatewayWithOneOutgoingIsError(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "A"},
			{"id": "gw", "type": "parallelGateway", "name": "Fork"},
			{"id": "t2", "type": "task", "name": "B"},
			{"id": "f1", "type": "sequenceFlow", "source": "t1", "target": "gw"},
			{"id": "f2", "type": "sequenceFlow", "source": "gw", "target": "t2"},
		},
	}

	diags, _ := Validate(doc, Options{})

	assert.True(t, hasCode(diags, "BPMN 0134"))
}

func TestValidate_ConvergingEventBasedGatewayWithOneIncomingIsError(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "A"},
			{"id": "gw", "type": "eventBasedGateway", "name": "Join"},
			{"id": "t2", "type": "task", "name": "B"},
			{"id": "f1", "type": "sequenceFlow", "source": "t1", "target": "gw"},
			{"id": "f2", "type": "sequenceFlow", "source": "gw", "target": "t2"},
		},
	}

	diags, _ := Validate(doc, Options{})

	assert.True(t, hasCode(diags, "BPMN 0134"))
}

func TestValidate_BalancedParallelGatewayHasNoFanInOutError(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "A"},
			{"id": "gw", "type": "parallelGateway", "name": "Fork"},
			{"id": "t2", "type": "task", "name": "B"},
			{"id": "t3", "type": "task", "name": "C"},
			{"id": "f1", "type": "sequenceFlow", "source": "t1", "target": "gw"},
			{"id": "f2", "type": "sequenceFlow", "source": "gw", "target": "t2"},
			{"id": "f3", "type": "sequenceFlow", "source": "gw", "target": "t3"},
		},
	}

	diags, _ := Validate(doc, Options{})

	assert.False(t, hasCode(diags, "BPMN 0134"))
}

func TestValidate_MalformedConditionExpressionWarns(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "A"},
			{"id": "t2", "type": "task", "name": "B"},
			{
				"id": "f1", "type": "sequenceFlow", "source": "t1", "target": "t2",
				"properties": map[string]any{"condition": "amount >"},
			},
		},
	}

	diags, _ := Validate(doc, Options{})

	assert.True(t, hasCode(diags, "Style 0150"))
}
