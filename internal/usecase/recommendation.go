package usecase

import (
	"fmt"
	"strings"

	"github.com/siteintel-service/internal/domain"
)

// Пороги заголовков рекомендации по gap-индексу (CompetitorRatio).
// Четыре полосы покрывают весь диапазон [0,100].
const (
	tierGoldMine      = 75
	tierHighPotential = 55
	tierCompetitive   = 35
)

// Пороги счетчиков для подсказки о пиковых часах
const (
	peakHourApartments = 8
	peakHourCorporates = 5
)

// GenerateRecommendation - чистая шаблонная функция: заголовок по
// gap-индексу, интерполяция счетчиков из отчета и подсказка о пиковых часах.
// Никаких внешних вызовов; каждая ветка тотальна над [0,100].
func GenerateRecommendation(counts domain.CategoryCounts, gap domain.MarketGap, scores domain.ScoringMatrix) string {
	var b strings.Builder

	switch {
	case scores.CompetitorRatio >= tierGoldMine:
		b.WriteString("Gold mine location: ")
		b.WriteString(fmt.Sprintf(
			"demand from %d corporate offices and %d residential complexes far outstrips the %d competing gyms in the catchment area.",
			counts.Corporates, counts.Apartments, counts.Gyms))
	case scores.CompetitorRatio >= tierHighPotential:
		b.WriteString("High potential: ")
		b.WriteString(fmt.Sprintf(
			"%d corporate offices and %d residential complexes against %d gyms leave clear room for a differentiated offer.",
			counts.Corporates, counts.Apartments, counts.Gyms))
	case scores.CompetitorRatio >= tierCompetitive:
		b.WriteString("Competitive market: ")
		b.WriteString(fmt.Sprintf(
			"%d gyms already serve this area; positioning and pricing will decide against %d offices and %d residential complexes of demand.",
			counts.Gyms, counts.Corporates, counts.Apartments))
	default:
		b.WriteString("Saturated market: ")
		b.WriteString(fmt.Sprintf(
			"%d gyms compete for limited demand (%d offices, %d residential complexes); entry is not recommended without a strong niche.",
			counts.Gyms, counts.Corporates, counts.Apartments))
	}

	if gap == domain.MarketUntapped {
		b.WriteString(" No gyms operate in the area yet - first-mover advantage applies.")
	}

	if counts.Cafes > 0 || counts.Transit > 0 {
		b.WriteString(fmt.Sprintf(
			" Supporting infrastructure: %d cafes, %d transit stops.",
			counts.Cafes, counts.Transit))
	}

	var peaks []string
	if counts.Corporates > peakHourCorporates {
		peaks = append(peaks, "weekday mornings and lunch hours (office crowd)")
	}
	if counts.Apartments > peakHourApartments {
		peaks = append(peaks, "weekday evenings and weekends (residential crowd)")
	}
	if len(peaks) > 0 {
		b.WriteString(" Expected peak load: ")
		b.WriteString(strings.Join(peaks, "; "))
		b.WriteString(".")
	}

	return b.String()
}
