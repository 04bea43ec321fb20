package entities

// FeatureCount is the width of the acceptance model input
const FeatureCount = 20

// FeatureNames is the column order the acceptance model was trained on.
// Reordering requires retraining the model.
var FeatureNames = [FeatureCount]string{
	"severity",
	"cond_trauma",
	"need_icu",
	"need_ventilator",
	"need_ct",
	"need_mri",
	"llm_confidence",
	"er_beds",
	"icu_beds",
	"trauma_icu_beds",
	"ct_available",
	"ventilator_available",
	"distance_km",
	"travel_time_min",
	"same_district",
	"district_level",
	"hour",
	"is_night",
	"is_weekend",
	"filter_level",
}

// FeatureVector is one model input row in FeatureNames order
type FeatureVector [FeatureCount]float64

// Map returns the vector keyed by feature name
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, FeatureCount)
	for i, name := range FeatureNames {
		m[name] = v[i]
	}
	return m
}

// Slice returns a copy of the vector as a slice
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// BedRatio is live/total, or 0 when total is not positive
func BedRatio(live, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(live) / float64(total)
}

// BoolToFloat encodes a flag as a model input
func BoolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
