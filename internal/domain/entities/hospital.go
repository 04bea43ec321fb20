package entities

import (
	"strconv"
	"strings"
)

// Raw field codes published by the emergency medical data API. Lookups are case-insensitive.
const (
	FieldHPID                = "hpid"
	FieldName                = "dutyname"
	FieldERPhone             = "dutytel3"
	FieldMainPhone           = "dutytel1"
	FieldERBeds              = "hvec"
	FieldICUBeds             = "hvicc"
	FieldCardiacICUBeds      = "hvccc"
	FieldNeuroICUBeds        = "hvcc"
	FieldTraumaICUBeds       = "hv9"
	FieldBurnBeds            = "hv8"
	FieldVentilatorAvailable = "hvventiayn"
	FieldCTAvailable         = "hvctayn"
	FieldMRIAvailable        = "hvmriayn"
	FieldPediatricAvailable  = "hv10"
	FieldIncubatorAvailable  = "hv11"
)

// HospitalRecord is one live capacity row for a hospital. It is rebuilt on every fetch.
type HospitalRecord struct {
	HPID  string `json:"hpid"`
	Name  string `json:"name"`
	Phone string `json:"phone"`

	ERBeds         int `json:"er_beds"`
	ICUBeds        int `json:"icu_beds"`
	CardiacICUBeds int `json:"cardiac_icu_beds"`
	NeuroICUBeds   int `json:"neuro_icu_beds"`
	TraumaICUBeds  int `json:"trauma_icu_beds"`
	BurnBeds       int `json:"burn_beds"`

	VentilatorAvailable bool `json:"ventilator_available"`
	CTAvailable         bool `json:"ct_available"`
	MRIAvailable        bool `json:"mri_available"`
	PediatricAvailable  bool `json:"pediatric_available"`
	IncubatorAvailable  bool `json:"incubator_available"`
}

// Key is the dedup key of the record: the hpid, or the name when the feed omitted it.
func (h HospitalRecord) Key() string {
	if h.HPID != "" {
		return h.HPID
	}
	return h.Name
}

// HospitalRecordFromFields builds a record from raw API fields.
// Missing or non-numeric counts become 0 and anything other than "Y" is false.
func HospitalRecordFromFields(fields map[string]string) HospitalRecord {
	normalized := make(map[string]string, len(fields))
	for k, v := range fields {
		normalized[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	phone := normalized[FieldERPhone]
	if phone == "" {
		phone = normalized[FieldMainPhone]
	}

	return HospitalRecord{
		HPID:                normalized[FieldHPID],
		Name:                normalized[FieldName],
		Phone:               phone,
		ERBeds:              SafeInt(normalized[FieldERBeds]),
		ICUBeds:             SafeInt(normalized[FieldICUBeds]),
		CardiacICUBeds:      SafeInt(normalized[FieldCardiacICUBeds]),
		NeuroICUBeds:        SafeInt(normalized[FieldNeuroICUBeds]),
		TraumaICUBeds:       SafeInt(normalized[FieldTraumaICUBeds]),
		BurnBeds:            SafeInt(normalized[FieldBurnBeds]),
		VentilatorAvailable: YesNo(normalized[FieldVentilatorAvailable]),
		CTAvailable:         YesNo(normalized[FieldCTAvailable]),
		MRIAvailable:        YesNo(normalized[FieldMRIAvailable]),
		PediatricAvailable:  YesNo(normalized[FieldPediatricAvailable]),
		IncubatorAvailable:  YesNo(normalized[FieldIncubatorAvailable]),
	}
}

// SafeInt parses an integer count, returning 0 for anything that is not a
// plain integer, including decimals such as "3.0" and out-of-range values.
func SafeInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

// YesNo interprets the API's Y/N flags
func YesNo(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "Y")
}

// StaticHospitalProfile is the slowly changing registry data of a hospital
type StaticHospitalProfile struct {
	HPID         string `json:"hpid" db:"hpid"`
	Name         string `json:"name" db:"name"`
	Address      string `json:"address" db:"address"`
	Phone        string `json:"phone" db:"phone"`
	TotalERBeds  int    `json:"total_er_beds" db:"total_er_beds"`
	TotalICUBeds int    `json:"total_icu_beds" db:"total_icu_beds"`
	TotalBeds    int    `json:"total_beds" db:"total_beds"`
}
