package regions

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/zatekoja/erhospitalmatch/internal/domain/repositories"
)

//go:embed regions.json
var defaultRegions []byte

// JSONRegionRepository serves a city -> districts registry decoded from JSON.
// Both city and district order follow the source document.
type JSONRegionRepository struct {
	cities    []string
	districts map[string][]string
}

// NewDefaultRegionRepository loads the bundled Seoul registry
func NewDefaultRegionRepository() (*JSONRegionRepository, error) {
	return ParseRegions(bytes.NewReader(defaultRegions))
}

// LoadRegionRepository reads the registry at path, or the bundled one when path is empty
func LoadRegionRepository(path string) (*JSONRegionRepository, error) {
	if path == "" {
		return NewDefaultRegionRepository()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open regions file: %w", err)
	}
	defer f.Close()

	return ParseRegions(f)
}

// ParseRegions decodes a JSON object whose keys are cities and values are district arrays
func ParseRegions(r io.Reader) (*JSONRegionRepository, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	repo := &JSONRegionRepository{districts: make(map[string][]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read city: %w", err)
		}
		city, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v, want city name", tok)
		}

		var districts []string
		if err := dec.Decode(&districts); err != nil {
			return nil, fmt.Errorf("failed to read districts of %s: %w", city, err)
		}
		if _, dup := repo.districts[city]; !dup {
			repo.cities = append(repo.cities, city)
		}
		repo.districts[city] = districts
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return repo, nil
}

// ListDistricts returns a copy of the city's districts in registry order
func (r *JSONRegionRepository) ListDistricts(city string) ([]string, bool) {
	districts, ok := r.districts[city]
	if !ok {
		return nil, false
	}
	out := make([]string, len(districts))
	copy(out, districts)
	return out, true
}

// ListCities returns the registered cities in registry order
func (r *JSONRegionRepository) ListCities() []string {
	out := make([]string, len(r.cities))
	copy(out, r.cities)
	return out
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read regions: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("malformed regions document: got %v, want %v", tok, want)
	}
	return nil
}

var _ repositories.RegionRepository = (*JSONRegionRepository)(nil)
