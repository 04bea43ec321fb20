package services

import (
	"time"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
)

// BuildFeatures turns a candidate into an acceptance model input row.
// It only reads its arguments, so equal inputs give identical vectors.
func BuildFeatures(c entities.Candidate, req entities.PatientRequirement, now time.Time) entities.FeatureVector {
	res := req.RequiredResources
	rec := c.Record
	hour := now.Hour()
	weekday := now.Weekday()

	return entities.FeatureVector{
		float64(req.Severity.Score()),
		entities.BoolToFloat(req.SuspectedCondition == entities.ConditionTrauma),
		entities.BoolToFloat(res.NeedICU),
		entities.BoolToFloat(res.NeedVentilator),
		entities.BoolToFloat(res.NeedCT),
		entities.BoolToFloat(res.NeedMRI),
		req.Confidence,
		float64(rec.ERBeds),
		float64(rec.ICUBeds),
		float64(rec.TraumaICUBeds),
		entities.BoolToFloat(rec.CTAvailable),
		entities.BoolToFloat(rec.VentilatorAvailable),
		c.DistanceKm,
		c.TravelTimeMin,
		entities.BoolToFloat(c.SameDistrict),
		float64(c.DistrictLevel),
		float64(hour),
		entities.BoolToFloat(hour >= 22 || hour <= 6),
		entities.BoolToFloat(weekday == time.Saturday || weekday == time.Sunday),
		float64(c.FilterLevel),
	}
}
