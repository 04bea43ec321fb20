package regions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegionRepository(t *testing.T) {
	repo, err := NewDefaultRegionRepository()
	require.NoError(t, err)

	assert.Equal(t, []string{"서울특별시"}, repo.ListCities())

	districts, ok := repo.ListDistricts("서울특별시")
	require.True(t, ok)
	assert.Len(t, districts, 25)
	assert.Equal(t, "종로구", districts[0])
	assert.Contains(t, districts, "강남구")

	_, ok = repo.ListDistricts("부산광역시")
	assert.False(t, ok)
}

func TestParseRegions_PreservesOrder(t *testing.T) {
	repo, err := ParseRegions(strings.NewReader(`{"Seoul":["Jongno","Gangnam","Mapo"],"Busan":["Haeundae","Jung"]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Seoul", "Busan"}, repo.ListCities())
	districts, ok := repo.ListDistricts("Seoul")
	require.True(t, ok)
	assert.Equal(t, []string{"Jongno", "Gangnam", "Mapo"}, districts)

	districts[0] = "mutated"
	again, _ := repo.ListDistricts("Seoul")
	assert.Equal(t, "Jongno", again[0])
}

func TestParseRegions_Malformed(t *testing.T) {
	for _, doc := range []string{`[]`, `{"Seoul": "Gangnam"}`, `{"Seoul": ["Gangnam"]`} {
		_, err := ParseRegions(strings.NewReader(doc))
		assert.Error(t, err, doc)
	}
}

func TestLoadRegionRepository_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Incheon":["Namdong","Yeonsu"]}`), 0o600))

	repo, err := LoadRegionRepository(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Incheon"}, repo.ListCities())

	_, err = LoadRegionRepository(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
