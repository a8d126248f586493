package repository

import (
	"context"

	"github.com/siteintel-service/internal/domain"
)

// FieldTier выбирает проекцию полей ответа провайдера.
// Минимальный набор используется там, где важны только счетчики.
type FieldTier string

const (
	FieldTierBasic    FieldTier = "basic"
	FieldTierExtended FieldTier = "extended"
)

// NearbySearchRequest - параметры пространственного запроса к провайдеру
type NearbySearchRequest struct {
	Center        domain.LatLng
	RadiusMeters  float64
	IncludedTypes []string
	PrimaryOnly   bool
	FieldTier     FieldTier
}

// NearbySearcher - пространственный запрос одной категории.
// Реализуется и клиентом провайдера, и стратегиями поверх него.
type NearbySearcher interface {
	// NearbySearch выполняет категорийный поиск в радиусе от точки
	NearbySearch(ctx context.Context, req NearbySearchRequest) ([]domain.POIRecord, error)
}

// PlacesRepository определяет методы для работы с внешним провайдером POI
type PlacesRepository interface {
	NearbySearcher

	// TextSearch выполняет текстовый поиск, опционально со смещением к точке
	TextSearch(ctx context.Context, query string, bias *domain.LatLng) ([]domain.POIRecord, error)
}
