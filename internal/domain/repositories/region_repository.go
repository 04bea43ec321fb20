package repositories

// RegionRepository is the registry of cities and their districts
type RegionRepository interface {
	// ListDistricts returns the districts of a city in registry order
	ListDistricts(city string) ([]string, bool)

	// ListCities returns the registered cities in registry order
	ListCities() []string
}
