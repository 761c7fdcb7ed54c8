package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Research-MCI/LIBRARY-BPMN-Graph-Transformation/internal/bpmnjson"
)

func TestNormalize_ClassifiesActivitiesEventsGateways(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "userTask", "name": "Fill form"},
			{"id": "s1", "type": "startEvent", "name": "Begin"},
			{"id": "g1", "type": "exclusiveGateway", "name": "Decide"},
			{"id": "f1", "type": "sequenceFlow", "source": "s1", "target": "t1"},
		},
	}

	out := Normalize(doc, "proc-1")

	require.Len(t, out.Activities, 1)
	require.Len(t, out.Events, 1)
	require.Len(t, out.Gateways, 1)
	require.Len(t, out.Flows, 1)

	assert.Equal(t, "t1", out.Activities[0].ID)
	assert.Equal(t, "proc-1", out.Activities[0].ProcessID)
	assert.Equal(t, "startEvent", out.Events[0].EventType)
	assert.Equal(t, "exclusivegateway", out.Gateways[0].GatewayType)
}

func TestNormalize_ResolvesPoolAndLaneNames(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "Work", "pool_id": "p1", "lane_id": "l1"},
		},
		Pools: []bpmnjson.RawElement{
			{"id": "p1", "name": "Finance"},
		},
		Lanes: []bpmnjson.RawElement{
			{"id": "l1", "name": "Accounting", "pool_id": "p1"},
		},
	}

	out := Normalize(doc, "proc-1")

	require.Len(t, out.Activities, 1)
	assert.Equal(t, "Finance", out.Activities[0].PoolName)
	assert.Equal(t, "Accounting", out.Activities[0].LaneName)
}

func TestNormalize_PoolNameMissResolvesToEmptyString(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "Work", "pool_id": "unknown"},
		},
	}

	out := Normalize(doc, "proc-1")

	assert.Equal(t, "", out.Activities[0].PoolName)
}

func TestNormalize_FlowEndpointsViaIncomingOutgoingArrays(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "A", "outgoing": []any{"f1"}},
			{"id": "t2", "type": "task", "name": "B", "incoming": []any{"f1"}},
			{"id": "f1", "type": "sequenceFlow"},
		},
	}

	out := Normalize(doc, "proc-1")

	require.Len(t, out.Flows, 1)
	assert.Equal(t, "t1", out.Flows[0].Source)
	assert.Equal(t, "t2", out.Flows[0].Target)
	assert.Equal(t, "A", out.Flows[0].SourceName)
	assert.Equal(t, "B", out.Flows[0].TargetName)
}

func TestNormalize_NoneAndNullPoolIDNormalizeToEmpty(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "A", "pool_id": "none"},
			{"id": "t2", "type": "task", "name": "B", "pool_id": "null"},
		},
	}

	out := Normalize(doc, "proc-1")

	assert.Equal(t, "", out.Activities[0].PoolID)
	assert.Equal(t, "", out.Activities[1].PoolID)
}

func TestNormalize_MessageFlowClassification(t *testing.T) {
	doc := &bpmnjson.Document{
		FlowElements: []bpmnjson.RawElement{
			{"id": "t1", "type": "task", "name": "A"},
			{"id": "t2", "type": "task", "name": "B"},
		},
		MessageFlows: []bpmnjson.RawElement{
			{"id": "m1", "type": "messageFlow", "source": "t1", "target": "t2"},
		},
	}

	out := Normalize(doc, "proc-1")

	require.Len(t, out.Flows, 1)
	assert.Equal(t, "messageflow", out.Flows[0].FlowType)
}
