package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/siteintel-service/internal/config"
	"github.com/siteintel-service/internal/domain"
	"github.com/siteintel-service/internal/domain/repository"
)

// Проекции полей ответа. Минимальная - там, где важны только счетчики,
// расширенная добавляет рейтинг, цену и адрес.
const (
	fieldMaskBasic    = "places.id,places.displayName,places.location,places.types"
	fieldMaskExtended = fieldMaskBasic + ",places.rating,places.userRatingCount,places.priceLevel,places.formattedAddress,places.businessStatus"
)

type client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxResultCount int
	limiter        *rate.Limiter
	logger         *zap.Logger
}

// NewPlacesClient создает новый клиент для Places API провайдера
func NewPlacesClient(cfg *config.PlacesConfig, logger *zap.Logger) repository.PlacesRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		maxResultCount: cfg.MaxResultCount,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		logger:         logger,
	}
}

// nearbySearchBody - тело запроса places:searchNearby
type nearbySearchBody struct {
	IncludedTypes        []string            `json:"includedTypes,omitempty"`
	IncludedPrimaryTypes []string            `json:"includedPrimaryTypes,omitempty"`
	MaxResultCount       int                 `json:"maxResultCount"`
	LocationRestriction  locationRestriction `json:"locationRestriction"`
}

type textSearchBody struct {
	TextQuery    string               `json:"textQuery"`
	LocationBias *locationRestriction `json:"locationBias,omitempty"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearbySearch выполняет категорийный поиск в радиусе от точки
func (c *client) NearbySearch(ctx context.Context, req repository.NearbySearchRequest) ([]domain.POIRecord, error) {
	body := nearbySearchBody{
		MaxResultCount: c.maxResultCount,
		LocationRestriction: locationRestriction{
			Circle: circle{
				Center: latLng{Latitude: req.Center.Lat, Longitude: req.Center.Lng},
				Radius: req.RadiusMeters,
			},
		},
	}

	// PrimaryOnly сужает совпадение до первичного типа места,
	// отсекая случайные вторичные теги категорий
	if req.PrimaryOnly {
		body.IncludedPrimaryTypes = req.IncludedTypes
	} else {
		body.IncludedTypes = req.IncludedTypes
	}

	mask := fieldMaskBasic
	if req.FieldTier == repository.FieldTierExtended {
		mask = fieldMaskExtended
	}

	raw, err := c.post(ctx, "/places:searchNearby", body, mask)
	if err != nil {
		return nil, err
	}

	records := mapPlaces(raw.Places, c.logger)

	c.logger.Debug("Nearby search completed",
		zap.Float64("lat", req.Center.Lat),
		zap.Float64("lng", req.Center.Lng),
		zap.Float64("radius", req.RadiusMeters),
		zap.Strings("types", req.IncludedTypes),
		zap.Int("results", len(records)))

	return records, nil
}

// TextSearch выполняет текстовый поиск, опционально со смещением к точке
func (c *client) TextSearch(ctx context.Context, query string, bias *domain.LatLng) ([]domain.POIRecord, error) {
	if query == "" {
		return nil, fmt.Errorf("text query cannot be empty")
	}

	body := textSearchBody{TextQuery: query}
	if bias != nil {
		body.LocationBias = &locationRestriction{
			Circle: circle{
				Center: latLng{Latitude: bias.Lat, Longitude: bias.Lng},
				Radius: 5000,
			},
		}
	}

	raw, err := c.post(ctx, "/places:searchText", body, fieldMaskExtended)
	if err != nil {
		return nil, err
	}

	records := mapPlaces(raw.Places, c.logger)

	c.logger.Debug("Text search completed",
		zap.String("query", query),
		zap.Int("results", len(records)))

	return records, nil
}

// post выполняет запрос к провайдеру с учетом rate limit
func (c *client) post(ctx context.Context, path string, body interface{}, fieldMask string) (*placesResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request",
			zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("Places API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("places API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var raw placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("Places API call successful",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)))

	return &raw, nil
}
