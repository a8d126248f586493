package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/siteintel-service/internal/domain"
	"github.com/siteintel-service/internal/domain/repository"
	"github.com/siteintel-service/internal/pkg/errors"
	"github.com/siteintel-service/internal/pkg/utils"
)

// corporateBlocklist отсекает записи, которые провайдер тегирует как офисы,
// но которые не создают дневного трафика сотрудников
var corporateBlocklist = []string{
	"hotel",
	"mall",
	"hospital",
	"resort",
	"guest house",
}

// Типы, относящиеся к метро-уровню транспорта; остальное - автобусный уровень
var metroGradeTypes = []string{"subway_station", "train_station", "light_rail_station"}

// Типы активного досуга; остальные vibe-места считаются развлекательными
var activeVibeTypes = []string{"sports_complex", "swimming_pool", "stadium"}

// IntelligenceUseCase - агрегатор локационной аналитики: веерные категорийные
// запросы, пост-фильтры, классификация конкуренции и рыночного разрыва.
type IntelligenceUseCase struct {
	search          *POISearchUseCase
	intelCache      repository.IntelCacheRepository
	streamRepo      repository.StreamRepository
	prewarmStream   string
	categoryTimeout time.Duration
	logger          *zap.Logger
}

// NewIntelligenceUseCase - создание нового IntelligenceUseCase.
// streamRepo может быть nil - тогда прогрев ward-кеша не запрашивается.
func NewIntelligenceUseCase(
	search *POISearchUseCase,
	intelCache repository.IntelCacheRepository,
	streamRepo repository.StreamRepository,
	prewarmStream string,
	categoryTimeout time.Duration,
	logger *zap.Logger,
) *IntelligenceUseCase {
	return &IntelligenceUseCase{
		search:          search,
		intelCache:      intelCache,
		streamRepo:      streamRepo,
		prewarmStream:   prewarmStream,
		categoryTimeout: categoryTimeout,
		logger:          logger,
	}
}

// GetLocationIntelligence строит полный отчет по точке. Категории
// запрашиваются параллельно; отказ одной категории деградирует до пустого
// списка и не прерывает агрегацию. Наружу всплывают только ошибки валидации.
func (uc *IntelligenceUseCase) GetLocationIntelligence(
	ctx context.Context,
	lat, lng, radiusMeters float64,
) (*domain.LocationIntelligence, error) {
	if !utils.ValidateCoordinates(lat, lng) {
		return nil, errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadiusMeters(radiusMeters) {
		return nil, errors.ErrInvalidRadius
	}

	center := domain.LatLng{Lat: lat, Lng: lng}
	started := time.Now()

	var gyms, corporates, cafes, transit, apartments, vibe []domain.POIRecord

	g, gctx := errgroup.WithContext(ctx)

	// Залы - расширенная проекция: нужны рейтинг и уровень цен
	g.Go(func() error {
		gyms = uc.fetchCategory(gctx, center, radiusMeters, domain.CategoryGym, true, repository.FieldTierExtended)
		return nil
	})
	g.Go(func() error {
		corporates = uc.fetchCategory(gctx, center, radiusMeters, domain.CategoryCorporate, true, repository.FieldTierBasic)
		return nil
	})
	g.Go(func() error {
		cafes = uc.fetchCategory(gctx, center, radiusMeters, domain.CategoryCafe, false, repository.FieldTierBasic)
		return nil
	})
	g.Go(func() error {
		transit = uc.fetchCategory(gctx, center, radiusMeters, domain.CategoryTransit, false, repository.FieldTierBasic)
		return nil
	})
	g.Go(func() error {
		apartments = uc.fetchCategory(gctx, center, radiusMeters, domain.CategoryApartment, false, repository.FieldTierBasic)
		return nil
	})
	g.Go(func() error {
		vibe = uc.fetchCategory(gctx, center, radiusMeters, domain.CategoryVibe, false, repository.FieldTierBasic)
		return nil
	})

	// Категорийные замыкания не возвращают ошибок
	_ = g.Wait()

	corporates = filterBlocklisted(corporates, corporateBlocklist)
	metro, bus := splitByTypes(transit, metroGradeTypes)
	active, entertainment := splitByTypes(vibe, activeVibeTypes)

	intel := &domain.LocationIntelligence{
		Center:            center,
		RadiusMeters:      radiusMeters,
		GeneratedAt:       time.Now(),
		Gyms:              domain.CategoryIntel{Total: len(gyms), Places: gyms},
		Corporates:        domain.CategoryIntel{Total: len(corporates), Places: corporates},
		Cafes:             domain.CategoryIntel{Total: len(cafes), Places: cafes},
		TransitMetro:      domain.CategoryIntel{Total: len(metro), Places: metro},
		TransitBus:        domain.CategoryIntel{Total: len(bus), Places: bus},
		Apartments:        domain.CategoryIntel{Total: len(apartments), Places: apartments},
		VibeActive:        domain.CategoryIntel{Total: len(active), Places: active},
		VibeEntertainment: domain.CategoryIntel{Total: len(entertainment), Places: entertainment},
	}

	intel.GymMetrics = deriveGymMetrics(gyms)
	intel.CompetitionLevel = classifyCompetition(len(gyms))
	intel.MarketGap, intel.DemandRatio = classifyMarketGap(len(gyms), len(corporates), len(apartments))

	uc.persistWard(ctx, intel)

	uc.logger.Info("Location intelligence aggregated",
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
		zap.Float64("radius", radiusMeters),
		zap.Int("gyms", intel.Gyms.Total),
		zap.String("competition", string(intel.CompetitionLevel)),
		zap.String("market_gap", string(intel.MarketGap)),
		zap.Duration("elapsed", time.Since(started)))

	return intel, nil
}

// GetCachedAggregate - быстрый путь по ward-кешу: приблизительные счетчики
// без полных объектов POI. При промахе ставит задание на прогрев.
func (uc *IntelligenceUseCase) GetCachedAggregate(
	ctx context.Context,
	lat, lng, radiusMeters float64,
) (*domain.AggregatedIntel, error) {
	if !utils.ValidateCoordinates(lat, lng) {
		return nil, errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadiusMeters(radiusMeters) {
		return nil, errors.ErrInvalidRadius
	}

	wardKey := utils.WardKey(lat, lng, radiusMeters)
	intel, err := uc.intelCache.GetWard(ctx, wardKey)
	if err != nil || intel == nil {
		uc.requestPrewarm(ctx, lat, lng, radiusMeters)
		return nil, errors.ErrIntelNotCached
	}

	return intel, nil
}

// fetchCategory выполняет один категорийный запрос с таймаутом.
// Любой отказ логируется и деградирует до пустого списка.
func (uc *IntelligenceUseCase) fetchCategory(
	ctx context.Context,
	center domain.LatLng,
	radiusMeters float64,
	category domain.Category,
	primaryOnly bool,
	tier repository.FieldTier,
) []domain.POIRecord {
	cctx, cancel := context.WithTimeout(ctx, uc.categoryTimeout)
	defer cancel()

	records, err := uc.search.NearbySearch(cctx, center, radiusMeters, domain.CategoryTypes(category), primaryOnly, tier)
	if err != nil {
		uc.logger.Warn("Category query failed, degrading to empty result",
			zap.String("category", string(category)),
			zap.Error(err))
		return []domain.POIRecord{}
	}

	return records
}

// persistWard сохраняет в ward-кеш только счетчики и классификации
func (uc *IntelligenceUseCase) persistWard(ctx context.Context, intel *domain.LocationIntelligence) {
	aggregate := &domain.AggregatedIntel{
		Center:           intel.Center,
		RadiusMeters:     intel.RadiusMeters,
		Counts:           intel.Counts(),
		GymMetrics:       intel.GymMetrics,
		CompetitionLevel: intel.CompetitionLevel,
		MarketGap:        intel.MarketGap,
		DemandRatio:      intel.DemandRatio,
		GeneratedAt:      intel.GeneratedAt,
	}

	wardKey := utils.WardKey(intel.Center.Lat, intel.Center.Lng, intel.RadiusMeters)
	if err := uc.intelCache.SetWard(ctx, wardKey, aggregate); err != nil {
		// Ward-кеш - оптимизация, ошибка записи не критична
		uc.logger.Warn("Failed to persist ward aggregate", zap.Error(err))
	}
}

// requestPrewarm публикует best-effort задание на прогрев ward-кеша
func (uc *IntelligenceUseCase) requestPrewarm(ctx context.Context, lat, lng, radiusMeters float64) {
	if uc.streamRepo == nil {
		return
	}

	req := domain.PrewarmRequest{Lat: lat, Lng: lng, RadiusMeters: radiusMeters}
	if err := uc.streamRepo.PublishToStream(ctx, uc.prewarmStream, req); err != nil {
		uc.logger.Debug("Failed to publish prewarm request", zap.Error(err))
	}
}

// filterBlocklisted убирает записи, чье имя содержит запрещенную подстроку
func filterBlocklisted(records []domain.POIRecord, blocklist []string) []domain.POIRecord {
	filtered := make([]domain.POIRecord, 0, len(records))
	for _, rec := range records {
		name := strings.ToLower(rec.DisplayName)
		blocked := false
		for _, term := range blocklist {
			if strings.Contains(name, term) {
				blocked = true
				break
			}
		}
		if !blocked {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// splitByTypes делит объединенный результат на две группы по тегам типов
func splitByTypes(records []domain.POIRecord, matchTypes []string) (matched, rest []domain.POIRecord) {
	matched = make([]domain.POIRecord, 0, len(records))
	rest = make([]domain.POIRecord, 0, len(records))
	for _, rec := range records {
		if rec.HasAnyType(matchTypes...) {
			matched = append(matched, rec)
		} else {
			rest = append(rest, rec)
		}
	}
	return matched, rest
}

// deriveGymMetrics считает производные метрики по залам-конкурентам
func deriveGymMetrics(gyms []domain.POIRecord) domain.GymMetrics {
	m := domain.GymMetrics{Total: len(gyms)}

	var ratingSum float64
	var ratedCount int

	for _, gym := range gyms {
		if gym.Rating > 0 {
			ratedCount++
			ratingSum += gym.Rating
			if gym.Rating >= 4.0 {
				m.HighRated++
			}
		}

		switch gym.PriceLevel {
		case domain.PriceLevelExpensive, domain.PriceLevelVeryExpensive:
			m.Premium++
		case domain.PriceLevelInexpensive, domain.PriceLevelFree:
			m.Budget++
		}
	}

	// Среднее только по оцененным залам, 0 если таких нет
	if ratedCount > 0 {
		m.AvgRating = ratingSum / float64(ratedCount)
	}

	return m
}

// classifyCompetition классифицирует конкуренцию по числу залов.
// Граничное значение принадлежит нижней полосе.
func classifyCompetition(gymCount int) domain.CompetitionLevel {
	switch {
	case gymCount <= 3:
		return domain.CompetitionLow
	case gymCount <= 6:
		return domain.CompetitionMedium
	case gymCount <= 10:
		return domain.CompetitionHigh
	default:
		return domain.CompetitionVeryHigh
	}
}

// classifyMarketGap классифицирует рыночный разрыв по отношению спроса к
// предложению. Ноль залов - всегда UNTAPPED, независимо от спроса.
func classifyMarketGap(gymCount, corporateCount, apartmentCount int) (domain.MarketGap, float64) {
	demandUnits := float64(corporateCount) + 0.8*float64(apartmentCount)

	if gymCount == 0 {
		return domain.MarketUntapped, demandUnits
	}

	ratio := demandUnits / float64(gymCount)
	switch {
	case ratio > 4:
		return domain.MarketOpportunity, ratio
	case ratio > 2:
		return domain.MarketCompetitive, ratio
	default:
		return domain.MarketSaturated, ratio
	}
}
