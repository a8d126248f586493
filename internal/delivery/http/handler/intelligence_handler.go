package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/siteintel-service/internal/pkg/errors"
	"github.com/siteintel-service/internal/pkg/utils"
	"github.com/siteintel-service/internal/pkg/validator"
	"github.com/siteintel-service/internal/usecase"
	"github.com/siteintel-service/internal/usecase/dto"
)

// IntelligenceHandler - обработчик запросов локационной аналитики
type IntelligenceHandler struct {
	intelUC       *usecase.IntelligenceUseCase
	scoringUC     *usecase.ScoringUseCase
	providerReady bool
	logger        *zap.Logger
}

// NewIntelligenceHandler - создание нового IntelligenceHandler.
// providerReady=false означает отсутствие API ключа провайдера: ошибка
// конфигурации всплывает здесь, на границе, и не ретраится внутри.
func NewIntelligenceHandler(
	intelUC *usecase.IntelligenceUseCase,
	scoringUC *usecase.ScoringUseCase,
	providerReady bool,
	logger *zap.Logger,
) *IntelligenceHandler {
	return &IntelligenceHandler{
		intelUC:       intelUC,
		scoringUC:     scoringUC,
		providerReady: providerReady,
		logger:        logger,
	}
}

// GetIntelligence - полный пайплайн: агрегация, скоринг, рекомендация
func (h *IntelligenceHandler) GetIntelligence(c *fiber.Ctx) error {
	if !h.providerReady {
		return utils.SendError(c, errors.ErrProviderNotConfigured)
	}

	var req dto.IntelligenceRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	intel, err := h.intelUC.GetLocationIntelligence(c.Context(), req.Lat, req.Lng, req.Radius)
	if err != nil {
		return utils.SendError(c, err)
	}

	scores := h.scoringUC.Score(intel.Counts())
	recommendation := usecase.GenerateRecommendation(intel.Counts(), intel.MarketGap, scores)

	return utils.SendSuccess(c, dto.IntelligenceResponse{
		Intelligence:   intel,
		Scores:         scores,
		Recommendation: recommendation,
	}, nil)
}

// GetCachedIntelligence - быстрый путь по ward-кешу (приблизительные
// счетчики без POI для мгновенного отображения)
func (h *IntelligenceHandler) GetCachedIntelligence(c *fiber.Ctx) error {
	var req dto.IntelligenceRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	aggregate, err := h.intelUC.GetCachedAggregate(c.Context(), req.Lat, req.Lng, req.Radius)
	if err != nil {
		return utils.SendError(c, err)
	}

	scores := h.scoringUC.Score(aggregate.Counts)
	recommendation := usecase.GenerateRecommendation(aggregate.Counts, aggregate.MarketGap, scores)

	return utils.SendSuccess(c, dto.CachedIntelligenceResponse{
		Aggregate:      aggregate,
		Scores:         scores,
		Recommendation: recommendation,
	}, &utils.Meta{Cached: true})
}
