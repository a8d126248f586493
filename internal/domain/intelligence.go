package domain

import "time"

// CompetitionLevel - качественная оценка конкуренции по числу залов в радиусе
type CompetitionLevel string

const (
	CompetitionLow      CompetitionLevel = "LOW"
	CompetitionMedium   CompetitionLevel = "MEDIUM"
	CompetitionHigh     CompetitionLevel = "HIGH"
	CompetitionVeryHigh CompetitionLevel = "VERY_HIGH"
)

// MarketGap - качественная оценка соотношения спроса и предложения
type MarketGap string

const (
	MarketSaturated   MarketGap = "SATURATED"
	MarketCompetitive MarketGap = "COMPETITIVE"
	MarketOpportunity MarketGap = "OPPORTUNITY"
	MarketUntapped    MarketGap = "UNTAPPED"
)

// CategoryIntel - результат по одной категории POI
type CategoryIntel struct {
	Total  int         `json:"total"`
	Places []POIRecord `json:"places"`
}

// GymMetrics - производные метрики по залам-конкурентам
type GymMetrics struct {
	Total     int     `json:"total"`
	HighRated int     `json:"high_rated"` // rating >= 4.0
	AvgRating float64 `json:"avg_rating"` // среднее только по оцененным, 0 если таких нет
	Premium   int     `json:"premium"`    // expensive / very expensive
	Budget    int     `json:"budget"`     // inexpensive / free
}

// LocationIntelligence - агрегированный отчет по точке.
// Строится заново на каждый запрос, сам по себе не кешируется.
type LocationIntelligence struct {
	Center       LatLng    `json:"center"`
	RadiusMeters float64   `json:"radius_meters"`
	GeneratedAt  time.Time `json:"generated_at"`

	Gyms              CategoryIntel `json:"gyms"`
	Corporates        CategoryIntel `json:"corporates"`
	Cafes             CategoryIntel `json:"cafes"`
	TransitMetro      CategoryIntel `json:"transit_metro"`
	TransitBus        CategoryIntel `json:"transit_bus"`
	Apartments        CategoryIntel `json:"apartments"`
	VibeActive        CategoryIntel `json:"vibe_active"`
	VibeEntertainment CategoryIntel `json:"vibe_entertainment"`

	GymMetrics       GymMetrics       `json:"gym_metrics"`
	CompetitionLevel CompetitionLevel `json:"competition_level"`
	MarketGap        MarketGap        `json:"market_gap"`
	DemandRatio      float64          `json:"demand_ratio"`
}

// Counts возвращает счетчики категорий для скоринга и ward-кеша
func (li *LocationIntelligence) Counts() CategoryCounts {
	return CategoryCounts{
		Gyms:       li.Gyms.Total,
		Corporates: li.Corporates.Total,
		Cafes:      li.Cafes.Total,
		Transit:    li.TransitMetro.Total + li.TransitBus.Total,
		Apartments: li.Apartments.Total,
		Vibe:       li.VibeActive.Total + li.VibeEntertainment.Total,
	}
}

// CategoryCounts - счетчики POI по категориям
type CategoryCounts struct {
	Gyms       int `json:"gyms"`
	Corporates int `json:"corporates"`
	Cafes      int `json:"cafes"`
	Transit    int `json:"transit"`
	Apartments int `json:"apartments"`
	Vibe       int `json:"vibe"`
}

// AggregatedIntel - полезная нагрузка ward-кеша: только счетчики и
// классификации, без полных объектов POI (дисциплина размера записи)
type AggregatedIntel struct {
	Center           LatLng           `json:"center"`
	RadiusMeters     float64          `json:"radius_meters"`
	Counts           CategoryCounts   `json:"counts"`
	GymMetrics       GymMetrics       `json:"gym_metrics"`
	CompetitionLevel CompetitionLevel `json:"competition_level"`
	MarketGap        MarketGap        `json:"market_gap"`
	DemandRatio      float64          `json:"demand_ratio"`
	GeneratedAt      time.Time        `json:"generated_at"`
}
