package entities

// RankedRecommendation is one entry of the final ranked list. Rank is 1-based and dense.
type RankedRecommendation struct {
	Rank          int     `json:"rank"`
	HospitalID    string  `json:"hpid"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	AcceptProb    float64 `json:"accept_prob"`
	DistanceKm    float64 `json:"distance_km"`
	TravelTimeMin float64 `json:"travel_time_min"`
}

// RecommendationStatus distinguishes the two empty outcomes from a successful ranking
type RecommendationStatus string

const (
	RecommendationStatusOK                     RecommendationStatus = "OK"
	RecommendationStatusNoCandidates           RecommendationStatus = "NO_CANDIDATES"
	RecommendationStatusNoAcceptableCandidates RecommendationStatus = "NO_ACCEPTABLE_CANDIDATES"
)

// RecommendationDetail joins a ranked entry with the candidate payload it was scored on
type RecommendationDetail struct {
	RankedRecommendation
	Address       string             `json:"address,omitempty"`
	District      string             `json:"district"`
	DistrictLevel int                `json:"district_level"`
	FilterLevel   int                `json:"filter_level"`
	ERBeds        int                `json:"er_beds"`
	ICUBeds       int                `json:"icu_beds"`
	TotalERBeds   int                `json:"total_er_beds"`
	TotalICUBeds  int                `json:"total_icu_beds"`
	TotalBeds     int                `json:"total_beds"`
	ERBedRatio    float64            `json:"er_bed_ratio"`
	ICUBedRatio   float64            `json:"icu_bed_ratio"`
	Features      map[string]float64 `json:"features"`
}
