package entities

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatientRequirement_Defaults(t *testing.T) {
	req := NewPatientRequirement("", "stroke?", RequiredResources{}, 1.7)

	assert.Equal(t, SeverityMedium, req.Severity)
	assert.Equal(t, ConditionUnknown, req.SuspectedCondition)
	assert.Equal(t, 1.0, req.Confidence)
	assert.Equal(t, 1, req.Severity.Score())
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, ParseSeverity(" high "))
	assert.Equal(t, SeverityLow, ParseSeverity("LOW"))
	assert.Equal(t, SeverityMedium, ParseSeverity("critical"))
	assert.Equal(t, 0, SeverityLow.Score())
	assert.Equal(t, 2, SeverityHigh.Score())
	assert.Equal(t, 1, Severity("").Score())
}

func TestPatientRequirement_RelaxedCopiesDoNotAlias(t *testing.T) {
	original := NewPatientRequirement("HIGH", "CARDIAC", RequiredResources{NeedICU: true, NeedCT: true}, 0.8)

	relaxed := original.WithCondition(ConditionUnknown).WithoutICU()

	assert.Equal(t, ConditionCardiac, original.SuspectedCondition)
	assert.True(t, original.RequiredResources.NeedICU)
	assert.Equal(t, ConditionUnknown, relaxed.SuspectedCondition)
	assert.False(t, relaxed.RequiredResources.NeedICU)
	assert.True(t, relaxed.RequiredResources.NeedCT)
}

func TestPatientRequirement_NormalizeDecodedJSON(t *testing.T) {
	var req PatientRequirement
	err := json.Unmarshal([]byte(`{"severity":"high","suspected_condition":"trauma","required_resources":{"need_icu":true},"confidence":-0.2,"notes":"fall"}`), &req)
	require.NoError(t, err)

	req = req.Normalize()
	assert.Equal(t, SeverityHigh, req.Severity)
	assert.Equal(t, ConditionTrauma, req.SuspectedCondition)
	assert.True(t, req.RequiredResources.NeedICU)
	assert.False(t, req.RequiredResources.NeedVentilator)
	assert.Equal(t, 0.0, req.Confidence)
	assert.Equal(t, "fall", req.Notes)
}

func TestClamp01_NaN(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(math.NaN()))
}
