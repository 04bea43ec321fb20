package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureNames_Order(t *testing.T) {
	assert.Equal(t, "severity", FeatureNames[0])
	assert.Equal(t, "llm_confidence", FeatureNames[6])
	assert.Equal(t, "distance_km", FeatureNames[12])
	assert.Equal(t, "filter_level", FeatureNames[FeatureCount-1])

	seen := map[string]bool{}
	for _, name := range FeatureNames {
		assert.False(t, seen[name], "duplicate feature %s", name)
		seen[name] = true
	}
}

func TestFeatureVector_Map(t *testing.T) {
	var v FeatureVector
	v[0] = 2
	v[12] = 3.25

	m := v.Map()
	assert.Len(t, m, FeatureCount)
	assert.Equal(t, 2.0, m["severity"])
	assert.Equal(t, 3.25, m["distance_km"])

	s := v.Slice()
	s[0] = 9
	assert.Equal(t, 2.0, v[0])
}

func TestBedRatio(t *testing.T) {
	assert.Equal(t, 0.5, BedRatio(5, 10))
	assert.Equal(t, 0.0, BedRatio(5, 0))
	assert.Equal(t, 0.0, BedRatio(5, -3))
}
