package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/siteintel-service/internal/domain"
	"github.com/siteintel-service/internal/domain/repository"
	"github.com/siteintel-service/internal/pkg/utils"
	"github.com/siteintel-service/internal/repository/memcache"
)

// POISearchUseCase - use case категорийного и текстового поиска POI.
// Пространственные запросы идут через memory-кеш с дедупликацией
// конкурентных промахов; текстовый поиск не кешируется.
type POISearchUseCase struct {
	searcher repository.NearbySearcher
	places   repository.PlacesRepository
	memCache *memcache.Cache
	logger   *zap.Logger
}

// NewPOISearchUseCase - создание нового POISearchUseCase
func NewPOISearchUseCase(
	searcher repository.NearbySearcher,
	places repository.PlacesRepository,
	memCache *memcache.Cache,
	logger *zap.Logger,
) *POISearchUseCase {
	return &POISearchUseCase{
		searcher: searcher,
		places:   places,
		memCache: memCache,
		logger:   logger,
	}
}

// NearbySearch возвращает POI категории в радиусе от точки. Повторный вызов
// с теми же аргументами в пределах TTL memory-кеша не порождает второго
// запроса к провайдеру.
func (uc *POISearchUseCase) NearbySearch(
	ctx context.Context,
	center domain.LatLng,
	radiusMeters float64,
	includedTypes []string,
	primaryOnly bool,
	tier repository.FieldTier,
) ([]domain.POIRecord, error) {
	key := utils.POICacheKey(center.Lat, center.Lng, radiusMeters, includedTypes)

	return uc.memCache.Fetch(key, func() ([]domain.POIRecord, error) {
		return uc.searcher.NearbySearch(ctx, repository.NearbySearchRequest{
			Center:        center,
			RadiusMeters:  radiusMeters,
			IncludedTypes: includedTypes,
			PrimaryOnly:   primaryOnly,
			FieldTier:     tier,
		})
	})
}

// TextSearch выполняет свободный текстовый поиск. Ошибка провайдера
// деградирует до пустого списка - интерактивный поиск не должен падать.
func (uc *POISearchUseCase) TextSearch(ctx context.Context, query string, bias *domain.LatLng) []domain.POIRecord {
	records, err := uc.places.TextSearch(ctx, query, bias)
	if err != nil {
		uc.logger.Warn("Text search failed, returning empty result",
			zap.String("query", query), zap.Error(err))
		return []domain.POIRecord{}
	}
	return records
}
