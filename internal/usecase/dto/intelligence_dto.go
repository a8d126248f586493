package dto

import (
	"github.com/siteintel-service/internal/domain"
)

// IntelligenceRequest - параметры запроса полной аналитики по точке
type IntelligenceRequest struct {
	Lat    float64 `query:"lat" validate:"min=-90,max=90"`
	Lng    float64 `query:"lng" validate:"min=-180,max=180"`
	Radius float64 `query:"radius" validate:"required,min=100,max=50000"`
}

// IntelligenceResponse - полный результат пайплайна скоринга
type IntelligenceResponse struct {
	Intelligence   *domain.LocationIntelligence `json:"intelligence"`
	Scores         domain.ScoringMatrix         `json:"scores"`
	Recommendation string                       `json:"recommendation"`
}

// CachedIntelligenceResponse - приблизительный результат из ward-кеша
type CachedIntelligenceResponse struct {
	Aggregate      *domain.AggregatedIntel `json:"aggregate"`
	Scores         domain.ScoringMatrix    `json:"scores"`
	Recommendation string                  `json:"recommendation"`
}

// TextSearchRequest - параметры текстового поиска мест
type TextSearchRequest struct {
	Query string   `query:"q" validate:"required,min=2"`
	Lat   *float64 `query:"lat" validate:"omitempty,min=-90,max=90"`
	Lng   *float64 `query:"lng" validate:"omitempty,min=-180,max=180"`
}

// TextSearchResponse - результат текстового поиска
type TextSearchResponse struct {
	Results []domain.POIRecord `json:"results"`
	Total   int                `json:"total"`
}
