package services

import (
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
)

// RelaxationStep is one level of the progressive filter.
// Relax derives the requirement checked at this level; ERBedsOnly ignores it and keeps any open ER.
type RelaxationStep struct {
	Level      int
	Name       string
	Relax      func(entities.PatientRequirement) entities.PatientRequirement
	ERBedsOnly bool
}

// DefaultRelaxationSchedule returns the four filter levels, strictest first
func DefaultRelaxationSchedule() []RelaxationStep {
	return []RelaxationStep{
		{
			Level: 0,
			Name:  "strict",
			Relax: func(r entities.PatientRequirement) entities.PatientRequirement { return r },
		},
		{
			Level: 1,
			Name:  "any_condition",
			Relax: func(r entities.PatientRequirement) entities.PatientRequirement {
				return r.WithCondition(entities.ConditionUnknown)
			},
		},
		{
			Level: 2,
			Name:  "no_icu",
			Relax: func(r entities.PatientRequirement) entities.PatientRequirement {
				return r.WithCondition(entities.ConditionUnknown).WithoutICU()
			},
		},
		{
			Level:      3,
			Name:       "er_beds_only",
			ERBedsOnly: true,
		},
	}
}

// ConstraintFilter tags live records with the strictest level they qualify at
type ConstraintFilter struct {
	schedule []RelaxationStep
}

// NewConstraintFilter creates a filter running the default schedule
func NewConstraintFilter() *ConstraintFilter {
	return NewConstraintFilterWithSchedule(DefaultRelaxationSchedule())
}

// NewConstraintFilterWithSchedule creates a filter with a custom schedule
func NewConstraintFilterWithSchedule(schedule []RelaxationStep) *ConstraintFilter {
	return &ConstraintFilter{schedule: schedule}
}

// Schedule returns a copy of the relaxation schedule
func (f *ConstraintFilter) Schedule() []RelaxationStep {
	out := make([]RelaxationStep, len(f.schedule))
	copy(out, f.schedule)
	return out
}

// Satisfies reports whether the record meets every hard requirement plus the condition rule
func Satisfies(record entities.HospitalRecord, req entities.PatientRequirement) bool {
	if record.ERBeds <= 0 {
		return false
	}

	res := req.RequiredResources
	if res.NeedICU && record.ICUBeds <= 0 {
		return false
	}
	if res.NeedVentilator && !record.VentilatorAvailable {
		return false
	}
	if res.NeedCT && !record.CTAvailable {
		return false
	}
	if res.NeedMRI && !record.MRIAvailable {
		return false
	}

	return satisfiesCondition(record, req.SuspectedCondition)
}

func satisfiesCondition(record entities.HospitalRecord, condition entities.Condition) bool {
	switch condition {
	case entities.ConditionCardiac:
		return record.CardiacICUBeds > 0
	case entities.ConditionRespiratory:
		return record.VentilatorAvailable
	case entities.ConditionNeuro:
		return record.NeuroICUBeds > 0
	case entities.ConditionTrauma:
		return record.TraumaICUBeds > 0
	case entities.ConditionBurn:
		return record.BurnBeds > 0
	case entities.ConditionPediatric:
		return record.PediatricAvailable || record.IncubatorAvailable
	default:
		return true
	}
}

// Apply runs every level of the schedule and concatenates the survivors in level order.
// A hospital appears at most once, at the first level it qualified for.
// The caller's requirement is never modified.
func (f *ConstraintFilter) Apply(records []entities.HospitalRecord, req entities.PatientRequirement) []entities.FilterResult {
	kept := make(map[string]struct{}, len(records))
	results := make([]entities.FilterResult, 0, len(records))

	for _, step := range f.schedule {
		var relaxed entities.PatientRequirement
		if !step.ERBedsOnly {
			relaxed = step.Relax(req)
		}

		for _, record := range records {
			key := record.Key()
			if _, ok := kept[key]; ok {
				continue
			}

			var ok bool
			if step.ERBedsOnly {
				ok = record.ERBeds > 0
			} else {
				ok = Satisfies(record, relaxed)
			}
			if !ok {
				continue
			}

			kept[key] = struct{}{}
			results = append(results, entities.FilterResult{Record: record, FilterLevel: step.Level})
		}
	}

	return results
}
