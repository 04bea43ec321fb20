package services

import (
	"context"
	"time"

	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// SearchOptions bounds the per-target fan-out
type SearchOptions struct {
	MaxExpansionLevel int
	Concurrency       int
	TargetTimeout     time.Duration
}

// DefaultSearchOptions matches the configuration defaults
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxExpansionLevel: entities.DistrictLevelSameCity,
		Concurrency:       4,
		TargetTimeout:     10 * time.Second,
	}
}

// SearchRequest is one hospital search from a requester's location
type SearchRequest struct {
	City        string
	District    string
	Latitude    float64
	Longitude   float64
	Requirement entities.PatientRequirement
}

// HospitalSearchService builds the deduplicated candidate set for a request
type HospitalSearchService struct {
	geoIndex *GeoIndexService
	live     providers.EmergencyDataProvider
	filter   *ConstraintFilter
	distance *DistanceService
	profiles *StaticProfileService
	opts     SearchOptions
	metrics  *observability.Metrics
}

// NewHospitalSearchService creates a new hospital search service
func NewHospitalSearchService(
	geoIndex *GeoIndexService,
	live providers.EmergencyDataProvider,
	filter *ConstraintFilter,
	distance *DistanceService,
	profiles *StaticProfileService,
	opts SearchOptions,
	metrics *observability.Metrics,
) *HospitalSearchService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if filter == nil {
		filter = NewConstraintFilter()
	}
	return &HospitalSearchService{
		geoIndex: geoIndex,
		live:     live,
		filter:   filter,
		distance: distance,
		profiles: profiles,
		opts:     opts,
		metrics:  metrics,
	}
}

// Search returns candidates in target order, each hospital once.
// Only region lookup errors are returned; failing targets are skipped.
func (s *HospitalSearchService) Search(ctx context.Context, req SearchRequest) ([]entities.Candidate, error) {
	ctx, span := observability.StartSpan(ctx, "HospitalSearchService.Search",
		attribute.String("search.city", req.City),
		attribute.String("search.district", req.District),
	)
	defer span.End()

	targets, err := s.geoIndex.Expand(req.City, req.District, s.opts.MaxExpansionLevel)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	slots := make([][]entities.Candidate, len(targets))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			slots[i] = s.processTarget(ctx, req, target)
			return nil
		})
	}
	_ = g.Wait()

	candidates := mergeSlots(slots)
	span.SetAttributes(
		attribute.Int("search.targets", len(targets)),
		attribute.Int("search.candidates", len(candidates)),
	)
	observability.RecordSearchCandidates(ctx, s.metrics, len(candidates))

	observability.LoggerFromContext(ctx).Info().
		Str("city", req.City).
		Str("district", req.District).
		Int("targets", len(targets)).
		Int("candidates", len(candidates)).
		Msg("Hospital search completed")

	return candidates, nil
}

func (s *HospitalSearchService) processTarget(ctx context.Context, req SearchRequest, target entities.SearchTarget) []entities.Candidate {
	if s.opts.TargetTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TargetTimeout)
		defer cancel()
	}
	ctx, span := observability.StartSpan(ctx, "HospitalSearchService.processTarget",
		attribute.String("search.target_district", target.District),
		attribute.Int("search.district_level", target.Level),
	)
	defer span.End()

	logger := observability.LoggerFromContext(ctx)

	records, err := s.live.FetchLive(ctx, req.City, target.District)
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordExternalFailure(ctx, s.metrics, "emergency_api")
		logger.Warn().Err(err).Str("district", target.District).Msg("Live data fetch failed, skipping district")
		return nil
	}
	if len(records) == 0 {
		logger.Debug().Str("district", target.District).Msg("No live data for district")
		return nil
	}

	filtered := s.filter.Apply(records, req.Requirement)
	candidates := make([]entities.Candidate, 0, len(filtered))
	for _, fr := range filtered {
		estimate, ok := s.distance.DistanceAndTime(ctx, req.Latitude, req.Longitude, fr.Record.Name)
		if !ok {
			logger.Warn().Str("hospital", fr.Record.Name).Str("hpid", fr.Record.HPID).Msg("Dropping hospital without location")
			continue
		}

		candidate := entities.Candidate{
			FilterResult:  fr,
			District:      target.District,
			DistrictLevel: target.Level,
			SameDistrict:  target.Level == entities.DistrictLevelHome,
			DistanceKm:    estimate.DistanceKm,
			TravelTimeMin: estimate.TravelTimeMin,
		}
		if s.profiles != nil {
			if profile, found := s.profiles.Lookup(ctx, fr.Record.HPID); found {
				candidate.Static = profile
			}
		}
		candidates = append(candidates, candidate)
	}

	span.SetAttributes(attribute.Int("search.target_candidates", len(candidates)))
	return candidates
}

// mergeSlots concatenates per-target results in target order, keeping each hospital's first occurrence
func mergeSlots(slots [][]entities.Candidate) []entities.Candidate {
	seen := make(map[string]struct{})
	merged := make([]entities.Candidate, 0)
	for _, slot := range slots {
		for _, c := range slot {
			key := c.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged
}
