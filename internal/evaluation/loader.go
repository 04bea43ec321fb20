package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadDispatchCases reads a JSON array of dispatch cases.
func LoadDispatchCases(path string) ([]DispatchCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dispatch cases file: %w", err)
	}

	var cases []DispatchCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse dispatch cases: %w", err)
	}
	for i := range cases {
		cases[i].Patient = cases[i].Patient.Normalize()
	}

	return cases, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// ValidateDispatchCases checks required fields and unique ids.
func ValidateDispatchCases(cases []DispatchCase) error {
	seen := make(map[string]struct{}, len(cases))

	for i, c := range cases {
		if c.ID == "" {
			return fmt.Errorf("case at index %d: missing id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("case at index %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}

		if c.City == "" || c.District == "" {
			return fmt.Errorf("case %q: city and district are required", c.ID)
		}
		if len(c.AcceptedHPIDs) == 0 {
			return fmt.Errorf("case %q: at least one accepted hpid is required", c.ID)
		}
		if !validDifficulties[c.Difficulty] {
			return fmt.Errorf("case %q: invalid difficulty %q (must be easy/medium/hard)", c.ID, c.Difficulty)
		}
	}

	return nil
}
