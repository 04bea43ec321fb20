package geolocation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/serjvanilla/go-overpass"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
)

// DefaultOverpassEndpoint is the public Overpass API interpreter
const DefaultOverpassEndpoint = "https://overpass-api.de/api/interpreter"

// South Korea, as south,west,north,east
const koreaBBox = "33.0,124.5,38.7,131.0"

// OverpassProvider resolves hospital names against OpenStreetMap amenity=hospital features
type OverpassProvider struct {
	client  *overpass.Client
	timeout time.Duration
	bbox    string
}

// NewOverpassProvider creates an OSM-backed geocoder
func NewOverpassProvider(endpoint string, timeout time.Duration) *OverpassProvider {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultOverpassEndpoint
	}
	httpClient := &http.Client{
		Timeout: timeout,
	}
	client := overpass.NewWithSettings(endpoint, 2, httpClient)
	return &OverpassProvider{
		client:  &client,
		timeout: timeout,
		bbox:    koreaBBox,
	}
}

// Geocode looks up a hospital by exact OSM name
func (o *OverpassProvider) Geocode(ctx context.Context, query string) (*providers.Coordinates, error) {
	name := strings.TrimSpace(query)
	if name == "" {
		return nil, apperrors.NewValidationError("query is required")
	}

	result, err := o.executeQuery(ctx, buildHospitalQuery(name, o.bbox))
	if err != nil {
		return nil, apperrors.NewExternalError("overpass hospital lookup failed", err)
	}

	coords, ok := firstLocation(result)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no OSM hospital named %q", name))
	}
	return coords, nil
}

// executeQuery runs the query, giving up when ctx ends first.
// The underlying client has no context support, so an abandoned query finishes in the background.
func (o *OverpassProvider) executeQuery(ctx context.Context, query string) (*overpass.Result, error) {
	type outcome struct {
		result overpass.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := o.client.Query(query)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		if out.err != nil {
			return nil, fmt.Errorf("overpass query failed: %w", out.err)
		}
		return &out.result, nil
	}
}

func buildHospitalQuery(name, bbox string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name)
	return fmt.Sprintf(`
		[out:json][timeout:%d];
		(
			node["amenity"="hospital"]["name"="%s"](%s);
			way["amenity"="hospital"]["name"="%s"](%s);
		);
		out body;
		>;
		out skel qt;
	`, 10, escaped, bbox, escaped, bbox)
}

// firstLocation prefers a tagged node and otherwise averages the nodes of a hospital way.
// Lowest ids win so repeated lookups resolve the same feature.
func firstLocation(result *overpass.Result) (*providers.Coordinates, bool) {
	var bestNode *overpass.Node
	for _, node := range result.Nodes {
		if node.Tags["amenity"] != "hospital" {
			continue
		}
		if bestNode == nil || node.ID < bestNode.ID {
			bestNode = node
		}
	}
	if bestNode != nil {
		return &providers.Coordinates{Latitude: bestNode.Lat, Longitude: bestNode.Lon}, true
	}

	var bestWay *overpass.Way
	for _, way := range result.Ways {
		if len(way.Nodes) == 0 {
			continue
		}
		if bestWay == nil || way.ID < bestWay.ID {
			bestWay = way
		}
	}
	if bestWay == nil {
		return nil, false
	}

	var lat, lon float64
	for _, node := range bestWay.Nodes {
		lat += node.Lat
		lon += node.Lon
	}
	count := float64(len(bestWay.Nodes))
	return &providers.Coordinates{Latitude: lat / count, Longitude: lon / count}, true
}

var _ providers.GeolocationProvider = (*OverpassProvider)(nil)
