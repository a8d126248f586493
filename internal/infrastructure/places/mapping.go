package places

import (
	"go.uber.org/zap"

	"github.com/siteintel-service/internal/domain"
)

// placesResponse - сырой ответ провайдера. Формат за пределами этого файла
// не используется: mapPlaces - единственная граница доверия к нему.
type placesResponse struct {
	Places []rawPlace `json:"places"`
}

type rawPlace struct {
	ID               string        `json:"id"`
	DisplayName      *localizedTxt `json:"displayName"`
	Location         *rawLatLng    `json:"location"`
	Rating           *float64      `json:"rating"`
	UserRatingCount  *int          `json:"userRatingCount"`
	PriceLevel       string        `json:"priceLevel"`
	Types            []string      `json:"types"`
	FormattedAddress string        `json:"formattedAddress"`
	BusinessStatus   string        `json:"businessStatus"`
}

type localizedTxt struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
}

type rawLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// mapPlaces нормализует список мест, дедуплицируя по id внутри одного ответа
func mapPlaces(raw []rawPlace, logger *zap.Logger) []domain.POIRecord {
	records := make([]domain.POIRecord, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, p := range raw {
		if p.ID == "" {
			logger.Warn("Skipping place without id")
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		records = append(records, mapPlace(p))
	}

	return records
}

// mapPlace преобразует сырую запись провайдера в POIRecord с явными
// значениями по умолчанию для каждого опционального поля
func mapPlace(p rawPlace) domain.POIRecord {
	rec := domain.POIRecord{
		ID:               p.ID,
		Types:            p.Types,
		PriceLevel:       p.PriceLevel,
		FormattedAddress: p.FormattedAddress,
		BusinessStatus:   p.BusinessStatus,
	}

	if p.DisplayName != nil {
		rec.DisplayName = p.DisplayName.Text
	}

	if p.Location != nil {
		rec.Location = domain.LatLng{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
		rec.HasLocation = true
	}
	// Без location остается {0,0} с HasLocation=false - такая запись
	// не участвует в проверках расстояния

	if p.Rating != nil {
		rec.Rating = *p.Rating
	}
	if p.UserRatingCount != nil {
		rec.UserRatingCount = *p.UserRatingCount
	}

	return rec
}
