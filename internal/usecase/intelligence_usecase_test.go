package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siteintel-service/internal/domain"
	"github.com/siteintel-service/internal/domain/repository"
	"github.com/siteintel-service/internal/pkg/errors"
	"github.com/siteintel-service/internal/pkg/utils"
	"github.com/siteintel-service/internal/repository/memcache"
	"github.com/siteintel-service/internal/usecase"
)

// categorySearcher отвечает по первому запрошенному типу категории
type categorySearcher struct {
	byType map[string][]domain.POIRecord
	errFor string
}

func (s *categorySearcher) NearbySearch(_ context.Context, req repository.NearbySearchRequest) ([]domain.POIRecord, error) {
	if len(req.IncludedTypes) == 0 {
		return nil, nil
	}
	lead := req.IncludedTypes[0]
	if s.errFor != "" && lead == s.errFor {
		return nil, fmt.Errorf("provider failure for %s", lead)
	}
	return s.byType[lead], nil
}

func (s *categorySearcher) TextSearch(_ context.Context, _ string, _ *domain.LatLng) ([]domain.POIRecord, error) {
	return nil, nil
}

// memoryIntelCache - ward-кеш в памяти для тестов
type memoryIntelCache struct {
	wards   map[string]*domain.AggregatedIntel
	setKeys []string
}

func newMemoryIntelCache() *memoryIntelCache {
	return &memoryIntelCache{wards: make(map[string]*domain.AggregatedIntel)}
}

func (c *memoryIntelCache) GetWard(_ context.Context, wardKey string) (*domain.AggregatedIntel, error) {
	return c.wards[wardKey], nil
}

func (c *memoryIntelCache) SetWard(_ context.Context, wardKey string, intel *domain.AggregatedIntel) error {
	c.wards[wardKey] = intel
	c.setKeys = append(c.setKeys, wardKey)
	return nil
}

// recordingStream фиксирует публикации заданий на прогрев
type recordingStream struct {
	published []interface{}
	streams   []string
}

func (s *recordingStream) CreateConsumerGroup(_ context.Context, _, _ string) error { return nil }

func (s *recordingStream) ConsumeStream(_ context.Context, _, _, _ string) (<-chan domain.StreamMessage, error) {
	ch := make(chan domain.StreamMessage)
	close(ch)
	return ch, nil
}

func (s *recordingStream) AckMessage(_ context.Context, _, _, _ string) error { return nil }

func (s *recordingStream) PublishToStream(_ context.Context, stream string, data interface{}) error {
	s.streams = append(s.streams, stream)
	s.published = append(s.published, data)
	return nil
}

func records(prefix string, n int) []domain.POIRecord {
	out := make([]domain.POIRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.POIRecord{
			ID:          fmt.Sprintf("%s-%d", prefix, i),
			DisplayName: fmt.Sprintf("%s %d", prefix, i),
		})
	}
	return out
}

func newIntelUC(searcher repository.NearbySearcher, cache *memoryIntelCache, stream repository.StreamRepository) *usecase.IntelligenceUseCase {
	logger := zap.NewNop()
	memCache := memcache.New(10*time.Minute, 50, logger)
	searchUC := usecase.NewPOISearchUseCase(searcher, &stubPlaces{}, memCache, logger)
	return usecase.NewIntelligenceUseCase(searchUC, cache, stream, "test:stream:prewarm", 5*time.Second, logger)
}

func intelWithGyms(t *testing.T, gyms []domain.POIRecord, byType map[string][]domain.POIRecord) *domain.LocationIntelligence {
	t.Helper()
	if byType == nil {
		byType = map[string][]domain.POIRecord{}
	}
	byType["gym"] = gyms

	uc := newIntelUC(&categorySearcher{byType: byType}, newMemoryIntelCache(), nil)
	intel, err := uc.GetLocationIntelligence(context.Background(), 12.9716, 77.5946, 1500)
	require.NoError(t, err)
	return intel
}

func TestIntelligenceUseCase_Validation(t *testing.T) {
	uc := newIntelUC(&categorySearcher{}, newMemoryIntelCache(), nil)

	t.Run("invalid coordinates", func(t *testing.T) {
		_, err := uc.GetLocationIntelligence(context.Background(), 91, 0, 1000)
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
	})

	t.Run("invalid radius", func(t *testing.T) {
		_, err := uc.GetLocationIntelligence(context.Background(), 12.9716, 77.5946, 50)
		assert.ErrorIs(t, err, errors.ErrInvalidRadius)
	})
}

func TestIntelligenceUseCase_CompetitionClassification(t *testing.T) {
	cases := []struct {
		gyms int
		want domain.CompetitionLevel
	}{
		{0, domain.CompetitionLow},
		{3, domain.CompetitionLow},
		{4, domain.CompetitionMedium},
		{6, domain.CompetitionMedium},
		{7, domain.CompetitionHigh},
		{10, domain.CompetitionHigh},
		{11, domain.CompetitionVeryHigh},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d gyms", tc.gyms), func(t *testing.T) {
			intel := intelWithGyms(t, records("gym", tc.gyms), nil)
			assert.Equal(t, tc.want, intel.CompetitionLevel)
		})
	}
}

func TestIntelligenceUseCase_MarketGapClassification(t *testing.T) {
	t.Run("zero gyms is always untapped", func(t *testing.T) {
		intel := intelWithGyms(t, nil, map[string][]domain.POIRecord{
			"corporate_office":  records("corp", 1),
			"apartment_complex": records("apt", 1),
		})
		assert.Equal(t, domain.MarketUntapped, intel.MarketGap)
	})

	t.Run("untapped even without demand", func(t *testing.T) {
		intel := intelWithGyms(t, nil, nil)
		assert.Equal(t, domain.MarketUntapped, intel.MarketGap)
	})

	t.Run("high demand ratio is opportunity", func(t *testing.T) {
		// (5 + 0.8*5) / 2 = 4.5 > 4
		intel := intelWithGyms(t, records("gym", 2), map[string][]domain.POIRecord{
			"corporate_office":  records("corp", 5),
			"apartment_complex": records("apt", 5),
		})
		assert.Equal(t, domain.MarketOpportunity, intel.MarketGap)
		assert.InDelta(t, 4.5, intel.DemandRatio, 1e-9)
	})

	t.Run("moderate ratio is competitive", func(t *testing.T) {
		// (5 + 0.8*2) / 3 = 2.2
		intel := intelWithGyms(t, records("gym", 3), map[string][]domain.POIRecord{
			"corporate_office":  records("corp", 5),
			"apartment_complex": records("apt", 2),
		})
		assert.Equal(t, domain.MarketCompetitive, intel.MarketGap)
	})

	t.Run("low ratio is saturated", func(t *testing.T) {
		// (2 + 0.8*3) / 12 = 0.37
		intel := intelWithGyms(t, records("gym", 12), map[string][]domain.POIRecord{
			"corporate_office":  records("corp", 2),
			"apartment_complex": records("apt", 3),
		})
		assert.Equal(t, domain.MarketSaturated, intel.MarketGap)
	})
}

func TestIntelligenceUseCase_CorporateBlocklist(t *testing.T) {
	intel := intelWithGyms(t, nil, map[string][]domain.POIRecord{
		"corporate_office": {
			{ID: "c1", DisplayName: "Acme Software Park"},
			{ID: "c2", DisplayName: "Grand Hotel Towers"},
			{ID: "c3", DisplayName: "Phoenix Mall Offices"},
			{ID: "c4", DisplayName: "City Hospital Annex"},
			{ID: "c5", DisplayName: "Seaside Resort HQ"},
			{ID: "c6", DisplayName: "Sunrise Guest House"},
			{ID: "c7", DisplayName: "Initech Campus"},
		},
	})

	assert.Equal(t, 2, intel.Corporates.Total)
	for _, rec := range intel.Corporates.Places {
		assert.Contains(t, []string{"c1", "c7"}, rec.ID)
	}
}

func TestIntelligenceUseCase_TransitAndVibeSplit(t *testing.T) {
	intel := intelWithGyms(t, nil, map[string][]domain.POIRecord{
		"subway_station": {
			{ID: "t1", Types: []string{"subway_station"}},
			{ID: "t2", Types: []string{"train_station"}},
			{ID: "t3", Types: []string{"bus_station"}},
			{ID: "t4", Types: []string{"transit_station"}},
		},
		"sports_complex": {
			{ID: "v1", Types: []string{"sports_complex"}},
			{ID: "v2", Types: []string{"swimming_pool"}},
			{ID: "v3", Types: []string{"movie_theater"}},
			{ID: "v4", Types: []string{"shopping_mall"}},
			{ID: "v5", Types: []string{"stadium"}},
		},
	})

	assert.Equal(t, 2, intel.TransitMetro.Total)
	assert.Equal(t, 2, intel.TransitBus.Total)
	assert.Equal(t, 3, intel.VibeActive.Total)
	assert.Equal(t, 2, intel.VibeEntertainment.Total)

	counts := intel.Counts()
	assert.Equal(t, 4, counts.Transit)
	assert.Equal(t, 5, counts.Vibe)
}

func TestIntelligenceUseCase_GymMetrics(t *testing.T) {
	gyms := []domain.POIRecord{
		{ID: "g1", Rating: 4.5, PriceLevel: domain.PriceLevelExpensive},
		{ID: "g2", Rating: 3.5, PriceLevel: domain.PriceLevelInexpensive},
		{ID: "g3"}, // без рейтинга и цены
		{ID: "g4", Rating: 4.0, PriceLevel: domain.PriceLevelVeryExpensive},
	}

	intel := intelWithGyms(t, gyms, nil)
	m := intel.GymMetrics

	assert.Equal(t, 4, m.Total)
	assert.Equal(t, 2, m.HighRated)
	// Среднее только по трем оцененным залам
	assert.InDelta(t, 4.0, m.AvgRating, 1e-9)
	assert.Equal(t, 2, m.Premium)
	assert.Equal(t, 1, m.Budget)
}

func TestIntelligenceUseCase_CategoryFailureDegrades(t *testing.T) {
	searcher := &categorySearcher{
		byType: map[string][]domain.POIRecord{
			"cafe": records("cafe", 3),
		},
		errFor: "gym",
	}
	uc := newIntelUC(searcher, newMemoryIntelCache(), nil)

	intel, err := uc.GetLocationIntelligence(context.Background(), 12.9716, 77.5946, 1500)
	require.NoError(t, err, "single category failure must not fail the report")
	assert.Equal(t, 0, intel.Gyms.Total)
	assert.Equal(t, 3, intel.Cafes.Total)
}

func TestIntelligenceUseCase_WardPersistence(t *testing.T) {
	cache := newMemoryIntelCache()
	searcher := &categorySearcher{byType: map[string][]domain.POIRecord{
		"gym":              records("gym", 2),
		"corporate_office": records("corp", 4),
	}}
	uc := newIntelUC(searcher, cache, nil)

	_, err := uc.GetLocationIntelligence(context.Background(), 12.9716, 77.5946, 1500)
	require.NoError(t, err)

	wardKey := utils.WardKey(12.9716, 77.5946, 1500)
	require.Contains(t, cache.wards, wardKey)

	aggregate := cache.wards[wardKey]
	assert.Equal(t, 2, aggregate.Counts.Gyms)
	assert.Equal(t, 4, aggregate.Counts.Corporates)
	assert.Equal(t, domain.CompetitionLow, aggregate.CompetitionLevel)
	assert.False(t, aggregate.GeneratedAt.IsZero())
}

func TestIntelligenceUseCase_GetCachedAggregate(t *testing.T) {
	t.Run("miss publishes prewarm request", func(t *testing.T) {
		cache := newMemoryIntelCache()
		stream := &recordingStream{}
		uc := newIntelUC(&categorySearcher{}, cache, stream)

		aggregate, err := uc.GetCachedAggregate(context.Background(), 12.9716, 77.5946, 1500)
		assert.ErrorIs(t, err, errors.ErrIntelNotCached)
		assert.Nil(t, aggregate)

		require.Len(t, stream.published, 1)
		assert.Equal(t, "test:stream:prewarm", stream.streams[0])
		req, ok := stream.published[0].(domain.PrewarmRequest)
		require.True(t, ok)
		assert.Equal(t, 12.9716, req.Lat)
		assert.Equal(t, 1500.0, req.RadiusMeters)
	})

	t.Run("hit returns aggregate without prewarm", func(t *testing.T) {
		cache := newMemoryIntelCache()
		stream := &recordingStream{}
		uc := newIntelUC(&categorySearcher{}, cache, stream)

		wardKey := utils.WardKey(12.9716, 77.5946, 1500)
		cache.wards[wardKey] = &domain.AggregatedIntel{
			Counts:           domain.CategoryCounts{Gyms: 3},
			CompetitionLevel: domain.CompetitionLow,
			GeneratedAt:      time.Now(),
		}

		aggregate, err := uc.GetCachedAggregate(context.Background(), 12.9716, 77.5946, 1500)
		require.NoError(t, err)
		assert.Equal(t, 3, aggregate.Counts.Gyms)
		assert.Empty(t, stream.published)
	})

	t.Run("nil stream repo tolerated on miss", func(t *testing.T) {
		uc := newIntelUC(&categorySearcher{}, newMemoryIntelCache(), nil)
		_, err := uc.GetCachedAggregate(context.Background(), 12.9716, 77.5946, 1500)
		assert.ErrorIs(t, err, errors.ErrIntelNotCached)
	})

	t.Run("invalid coordinates rejected before cache lookup", func(t *testing.T) {
		uc := newIntelUC(&categorySearcher{}, newMemoryIntelCache(), nil)
		_, err := uc.GetCachedAggregate(context.Background(), -95, 0, 1500)
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
	})
}
