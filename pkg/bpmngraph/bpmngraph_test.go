package bpmngraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_SimpleTwoTaskFlow(t *testing.T) {
	doc := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "t1", "type": "userTask", "name": "First"},
				map[string]any{"id": "t2", "type": "serviceTask", "name": "Second"},
				map[string]any{"id": "f1", "type": "sequenceFlow", "source": "t1", "target": "t2"},
			},
		},
	}

	res, err := Transform(doc, WithProcessID("proc-xyz"))

	require.NoError(t, err)
	assert.Equal(t, 2, res.NodeCount)
	assert.Equal(t, 1, res.EdgeCount)
	assert.Equal(t, "proc-xyz", res.ProcessID)
}

func TestTransform_StrictModeFailsOnOrphanTaskMissingFlows(t *testing.T) {
	doc := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "t1", "type": "userTask", "name": "Lonely"},
			},
		},
	}

	_, err := Transform(doc, WithStrict(true))

	require.Error(t, err)
	var semErr *SemanticValidationError
	require.ErrorAs(t, err, &semErr)
}

func TestPipeline_ReusableConfigNewPipelinePerCall(t *testing.T) {
	doc := map[string]any{
		"result": map[string]any{
			"flowElements": []any{
				map[string]any{"id": "t1", "type": "task", "name": "A"},
			},
		},
	}

	p := New(WithAutoFix(true), WithBatchSize(5))
	res, err := p.Transform(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NodeCount)

	batches := res.BatchOutput(5)
	assert.LessOrEqual(t, len(batches), 1)
}
