package domain

// LatLng представляет географическую точку
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Уровни цен провайдера (Places API v1)
const (
	PriceLevelFree          = "PRICE_LEVEL_FREE"
	PriceLevelInexpensive   = "PRICE_LEVEL_INEXPENSIVE"
	PriceLevelModerate      = "PRICE_LEVEL_MODERATE"
	PriceLevelExpensive     = "PRICE_LEVEL_EXPENSIVE"
	PriceLevelVeryExpensive = "PRICE_LEVEL_VERY_EXPENSIVE"
)

// POIRecord - нормализованная запись точки интереса из внешнего провайдера.
// Единственная граница доверия к формату провайдера - places.mapPlace;
// все опциональные поля имеют явные нулевые значения по умолчанию.
type POIRecord struct {
	ID               string   `json:"id"`
	DisplayName      string   `json:"display_name"`
	Location         LatLng   `json:"location"`
	HasLocation      bool     `json:"has_location"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingCount  int      `json:"user_rating_count,omitempty"`
	PriceLevel       string   `json:"price_level,omitempty"`
	Types            []string `json:"types,omitempty"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	BusinessStatus   string   `json:"business_status,omitempty"`
}

// HasType проверяет наличие типа в списке типов места
func (p *POIRecord) HasType(t string) bool {
	for _, pt := range p.Types {
		if pt == t {
			return true
		}
	}
	return false
}

// HasAnyType проверяет наличие хотя бы одного из типов
func (p *POIRecord) HasAnyType(types ...string) bool {
	for _, t := range types {
		if p.HasType(t) {
			return true
		}
	}
	return false
}

// Категории POI, участвующие в агрегации
type Category string

const (
	CategoryGym       Category = "gym"
	CategoryCorporate Category = "corporate"
	CategoryCafe      Category = "cafe"
	CategoryTransit   Category = "transit"
	CategoryApartment Category = "apartment"
	CategoryVibe      Category = "vibe"
)

// CategoryTypes возвращает типы провайдера, запрашиваемые для категории
func CategoryTypes(c Category) []string {
	switch c {
	case CategoryGym:
		return []string{"gym", "fitness_center"}
	case CategoryCorporate:
		return []string{"corporate_office", "coworking_space"}
	case CategoryCafe:
		return []string{"cafe", "coffee_shop"}
	case CategoryTransit:
		return []string{"subway_station", "bus_station", "transit_station"}
	case CategoryApartment:
		return []string{"apartment_complex", "apartment_building"}
	case CategoryVibe:
		return []string{"sports_complex", "swimming_pool", "movie_theater", "shopping_mall"}
	default:
		return nil
	}
}

// AllCategories возвращает все категории в порядке агрегации
func AllCategories() []Category {
	return []Category{
		CategoryGym,
		CategoryCorporate,
		CategoryCafe,
		CategoryTransit,
		CategoryApartment,
		CategoryVibe,
	}
}
