package entities

import (
	"math"
	"strings"
)

// Severity is the triage severity reported by the patient-profile extractor
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Score maps severity onto the ordinal used by the acceptance model.
// Anything unrecognised scores as MEDIUM.
func (s Severity) Score() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityHigh:
		return 2
	default:
		return 1
	}
}

// ParseSeverity normalises free-form input, defaulting to MEDIUM
func ParseSeverity(value string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(value))) {
	case SeverityLow:
		return SeverityLow
	case SeverityHigh:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// Condition is the suspected condition category
type Condition string

const (
	ConditionCardiac     Condition = "CARDIAC"
	ConditionRespiratory Condition = "RESPIRATORY"
	ConditionNeuro       Condition = "NEURO"
	ConditionTrauma      Condition = "TRAUMA"
	ConditionBurn        Condition = "BURN"
	ConditionPoison      Condition = "POISON"
	ConditionPediatric   Condition = "PEDIATRIC"
	ConditionUnknown     Condition = "UNKNOWN"
)

var knownConditions = map[Condition]struct{}{
	ConditionCardiac:     {},
	ConditionRespiratory: {},
	ConditionNeuro:       {},
	ConditionTrauma:      {},
	ConditionBurn:        {},
	ConditionPoison:      {},
	ConditionPediatric:   {},
	ConditionUnknown:     {},
}

// ParseCondition normalises free-form input, defaulting to UNKNOWN
func ParseCondition(value string) Condition {
	c := Condition(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := knownConditions[c]; ok {
		return c
	}
	return ConditionUnknown
}

// RequiredResources lists the hard resource needs of the patient. Absent flags are false.
type RequiredResources struct {
	NeedICU        bool `json:"need_icu"`
	NeedVentilator bool `json:"need_ventilator"`
	NeedCT         bool `json:"need_ct"`
	NeedMRI        bool `json:"need_mri"`
}

// PatientRequirement is the structured patient profile a search runs against.
// It is a value type: relaxed variants are derived copies and never alias the caller's value.
type PatientRequirement struct {
	Severity           Severity          `json:"severity"`
	SuspectedCondition Condition         `json:"suspected_condition"`
	RequiredResources  RequiredResources `json:"required_resources"`
	Confidence         float64           `json:"confidence"`
	Notes              string            `json:"notes,omitempty"`
}

// NewPatientRequirement builds a requirement with documented defaults applied:
// MEDIUM severity, UNKNOWN condition, confidence clamped to [0,1].
func NewPatientRequirement(severity, condition string, resources RequiredResources, confidence float64) PatientRequirement {
	return PatientRequirement{
		Severity:           ParseSeverity(severity),
		SuspectedCondition: ParseCondition(condition),
		RequiredResources:  resources,
		Confidence:         clamp01(confidence),
	}
}

// Normalize re-applies construction defaults, for values decoded straight from JSON.
func (p PatientRequirement) Normalize() PatientRequirement {
	n := NewPatientRequirement(string(p.Severity), string(p.SuspectedCondition), p.RequiredResources, p.Confidence)
	n.Notes = p.Notes
	return n
}

// WithCondition returns a copy with the suspected condition replaced
func (p PatientRequirement) WithCondition(c Condition) PatientRequirement {
	p.SuspectedCondition = c
	return p
}

// WithoutICU returns a copy that no longer requires an ICU bed
func (p PatientRequirement) WithoutICU() PatientRequirement {
	p.RequiredResources.NeedICU = false
	return p
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
