package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/siteintel-service/internal/domain"
	"github.com/siteintel-service/internal/pkg/errors"
	"github.com/siteintel-service/internal/pkg/utils"
	"github.com/siteintel-service/internal/pkg/validator"
	"github.com/siteintel-service/internal/usecase"
	"github.com/siteintel-service/internal/usecase/dto"
)

// PlacesHandler - обработчик интерактивного текстового поиска мест
type PlacesHandler struct {
	searchUC      *usecase.POISearchUseCase
	providerReady bool
	logger        *zap.Logger
}

// NewPlacesHandler - создание нового PlacesHandler
func NewPlacesHandler(searchUC *usecase.POISearchUseCase, providerReady bool, logger *zap.Logger) *PlacesHandler {
	return &PlacesHandler{
		searchUC:      searchUC,
		providerReady: providerReady,
		logger:        logger,
	}
}

// TextSearch - свободный текстовый поиск, опционально смещенный к точке
func (h *PlacesHandler) TextSearch(c *fiber.Ctx) error {
	if !h.providerReady {
		return utils.SendError(c, errors.ErrProviderNotConfigured)
	}

	var req dto.TextSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	var bias *domain.LatLng
	if req.Lat != nil && req.Lng != nil {
		bias = &domain.LatLng{Lat: *req.Lat, Lng: *req.Lng}
	}

	results := h.searchUC.TextSearch(c.Context(), req.Query, bias)

	return utils.SendSuccess(c, dto.TextSearchResponse{
		Results: results,
		Total:   len(results),
	}, &utils.Meta{Total: len(results)})
}
