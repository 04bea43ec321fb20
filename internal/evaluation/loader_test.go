package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
)

func TestLoadDispatchCases_ValidFile(t *testing.T) {
	content := `[
		{"id": "c1", "city": "서울특별시", "district": "강남구", "lat": 37.49, "lon": 127.03,
		 "patient": {"severity": "high", "suspected_condition": "cardiac", "required_resources": {"need_icu": true}, "confidence": 0.9},
		 "accepted_hpids": ["A1100010"], "difficulty": "easy"},
		{"id": "c2", "city": "서울특별시", "district": "서초구", "lat": 37.48, "lon": 127.01,
		 "patient": {"severity": "LOW", "suspected_condition": "TRAUMA"},
		 "accepted_hpids": ["A1100020", "A1100030"], "difficulty": "hard"}
	]`
	path := writeTempFile(t, content)

	cases, err := LoadDispatchCases(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].Patient.SuspectedCondition != entities.ConditionCardiac {
		t.Errorf("expected normalized condition CARDIAC, got %s", cases[0].Patient.SuspectedCondition)
	}
	if cases[0].Patient.Severity != entities.SeverityHigh {
		t.Errorf("expected normalized severity HIGH, got %s", cases[0].Patient.Severity)
	}
	if len(cases[1].AcceptedHPIDs) != 2 {
		t.Errorf("expected 2 accepted hpids, got %d", len(cases[1].AcceptedHPIDs))
	}
	if err := ValidateDispatchCases(cases); err != nil {
		t.Errorf("expected valid cases, got %v", err)
	}
}

func TestLoadDispatchCases_MissingFile(t *testing.T) {
	_, err := LoadDispatchCases(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadDispatchCases_InvalidJSON(t *testing.T) {
	path := writeTempFile(t, `{not json`)
	_, err := LoadDispatchCases(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestValidateDispatchCases(t *testing.T) {
	valid := DispatchCase{ID: "c1", City: "서울특별시", District: "강남구", AcceptedHPIDs: []string{"A1"}, Difficulty: "easy"}

	tests := []struct {
		name   string
		mutate func(c *DispatchCase)
	}{
		{"missing id", func(c *DispatchCase) { c.ID = "" }},
		{"missing district", func(c *DispatchCase) { c.District = "" }},
		{"no accepted hpids", func(c *DispatchCase) { c.AcceptedHPIDs = nil }},
		{"bad difficulty", func(c *DispatchCase) { c.Difficulty = "extreme" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := ValidateDispatchCases([]DispatchCase{c}); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	t.Run("duplicate id", func(t *testing.T) {
		if err := ValidateDispatchCases([]DispatchCase{valid, valid}); err == nil {
			t.Error("expected duplicate id error")
		}
	})
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
