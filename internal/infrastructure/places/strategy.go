package places

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/siteintel-service/internal/domain"
	"github.com/siteintel-service/internal/domain/repository"
	"github.com/siteintel-service/internal/pkg/utils"
)

// SpatialQueryStrategy - стратегия пространственного запроса.
// Одна зона против веерного запроса - операционный выбор (полнота против
// числа запросов), а не вопрос корректности, поэтому выбирается конфигом.
type SpatialQueryStrategy interface {
	NearbySearch(ctx context.Context, req repository.NearbySearchRequest) ([]domain.POIRecord, error)
}

// NewStrategy возвращает стратегию по имени из конфигурации.
// Неизвестное имя трактуется как "single".
func NewStrategy(name string, places repository.PlacesRepository, logger *zap.Logger) SpatialQueryStrategy {
	if name == "multizone" {
		return &multiZoneStrategy{places: places, logger: logger}
	}
	return &singleZoneStrategy{places: places}
}

// singleZoneStrategy - один запрос на категорию. Предпочтительна, когда
// нативного лимита страницы провайдера хватает.
type singleZoneStrategy struct {
	places repository.PlacesRepository
}

func (s *singleZoneStrategy) NearbySearch(ctx context.Context, req repository.NearbySearchRequest) ([]domain.POIRecord, error) {
	return s.places.NearbySearch(ctx, req)
}

// multiZoneStrategy - центральный запрос плюс четыре квадрантных подзапроса
// на уменьшенном радиусе. Обходит лимит страницы провайдера в плотных
// районах ценой пятикратного объема запросов.
type multiZoneStrategy struct {
	places repository.PlacesRepository
	logger *zap.Logger
}

func (s *multiZoneStrategy) NearbySearch(ctx context.Context, req repository.NearbySearchRequest) ([]domain.POIRecord, error) {
	subRadius := req.RadiusMeters / 2

	// Смещение центра подзоны на полрадиуса в градусах
	latOffset := subRadius / 111320.0
	lngOffset := subRadius / (111320.0 * math.Cos(req.Center.Lat*math.Pi/180.0))

	zones := []domain.LatLng{
		req.Center,
		{Lat: req.Center.Lat + latOffset, Lng: req.Center.Lng + lngOffset},
		{Lat: req.Center.Lat + latOffset, Lng: req.Center.Lng - lngOffset},
		{Lat: req.Center.Lat - latOffset, Lng: req.Center.Lng + lngOffset},
		{Lat: req.Center.Lat - latOffset, Lng: req.Center.Lng - lngOffset},
	}

	seen := make(map[string]struct{})
	var merged []domain.POIRecord

	for i, zone := range zones {
		zoneReq := req
		zoneReq.Center = zone
		if i > 0 {
			zoneReq.RadiusMeters = subRadius
		}

		records, err := s.places.NearbySearch(ctx, zoneReq)
		if err != nil {
			// Отказ одной подзоны не отменяет остальные
			s.logger.Warn("Zone query failed, continuing",
				zap.Int("zone", i), zap.Error(err))
			continue
		}

		for _, rec := range records {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}

			// Пространственный фильтр провайдера приблизителен на границах
			// зон - перепроверяем принадлежность истинному радиусу
			if rec.HasLocation {
				dist := utils.HaversineDistanceMeters(
					req.Center.Lat, req.Center.Lng,
					rec.Location.Lat, rec.Location.Lng,
				)
				if dist > req.RadiusMeters {
					continue
				}
			}

			merged = append(merged, rec)
		}
	}

	return merged, nil
}
