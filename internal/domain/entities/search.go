package entities

// District expansion levels
const (
	DistrictLevelHome     = 0
	DistrictLevelSameCity = 1
)

// SearchTarget is one district to search, tagged with how far it is from the requester
type SearchTarget struct {
	District string `json:"district"`
	Level    int    `json:"level"`
}

// FilterResult is a live record tagged with the strictness level it first qualified at
type FilterResult struct {
	Record      HospitalRecord `json:"record"`
	FilterLevel int            `json:"filter_level"`
}

// Candidate is a deduplicated, enriched hospital ready for ranking.
// Static is nil when the registry had no profile for the hospital.
type Candidate struct {
	FilterResult
	Static        *StaticHospitalProfile `json:"static,omitempty"`
	District      string                 `json:"district"`
	DistrictLevel int                    `json:"district_level"`
	SameDistrict  bool                   `json:"same_district"`
	DistanceKm    float64                `json:"distance_km"`
	TravelTimeMin float64                `json:"travel_time_min"`
}

// Key returns the dedup key of the underlying record
func (c Candidate) Key() string {
	return c.Record.Key()
}
