package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_ExclusiveSplit(t *testing.T) {
	c := Classify("exclusivegateway", "Decide", 1, 2)
	assert.Equal(t, XOR, c.Type)
	assert.Equal(t, Split, c.Direction)
	assert.Equal(t, "XOR_SPLIT", c.Label())
}

func TestClassify_ParallelJoin(t *testing.T) {
	c := Classify("parallelgateway", "Join Branches", 2, 1)
	assert.Equal(t, AND, c.Type)
	assert.Equal(t, Join, c.Direction)
	assert.Equal(t, "AND_JOIN", c.Label())
}

func TestClassify_SingleGateway(t *testing.T) {
	c := Classify("inclusivegateway", "Pass-through", 1, 1)
	assert.Equal(t, OR, c.Type)
	assert.Equal(t, Single, c.Direction)
	assert.Equal(t, "OR", c.Label())
}

func TestClassify_EventBasedAlwaysSplit(t *testing.T) {
	c := Classify("eventbasedgateway", "Wait for event", 1, 1)
	assert.Equal(t, EventBased, c.Type)
	assert.Equal(t, Split, c.Direction)
}

func TestClassify_UnknownTypeFallsBackToGeneric(t *testing.T) {
	c := Classify("mysteryGateway", "Mystery", 1, 1)
	assert.Equal(t, Generic, c.Type)
}

func TestClassify_EmptyTypeFallsBackToNameSubstring(t *testing.T) {
	c := Classify("", "Complex routing gateway", 1, 1)
	assert.Equal(t, Complex, c.Type)
}

func TestClassify_ExactTypeBeatsNameFallback(t *testing.T) {
	// Name mentions "event" but gateway_type is explicitly exclusive:
	// the exact type match must win per the documented tie-break order.
	c := Classify("exclusivegateway", "Wait for event trigger", 1, 2)
	assert.Equal(t, XOR, c.Type)
}

func TestSanitizeLabel_ReplacesSpacesAndHyphens(t *testing.T) {
	assert.Equal(t, "APPROVED_BY_MANAGER", SanitizeLabel("approved-by manager"))
}

func TestSanitizeLabel_InvalidIdentifierFallsBackToFlow(t *testing.T) {
	assert.Equal(t, "FLOW", SanitizeLabel("123$%^"))
}

func TestSanitizeLabel_EmptyFallsBackToFlow(t *testing.T) {
	assert.Equal(t, "FLOW", SanitizeLabel(""))
}
