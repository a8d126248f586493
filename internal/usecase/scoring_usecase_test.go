package usecase_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteintel-service/internal/domain"
	"github.com/siteintel-service/internal/usecase"
)

func TestScoringUseCase_Score(t *testing.T) {
	uc := usecase.NewScoringUseCase()

	t.Run("all fields stay within 0..100 across input grid", func(t *testing.T) {
		grid := []int{0, 1, 5, 12, 25, 100, 10000}
		for _, gyms := range grid {
			for _, apartments := range grid {
				for _, corporates := range grid {
					m := uc.Score(domain.CategoryCounts{
						Gyms:       gyms,
						Corporates: corporates,
						Cafes:      corporates,
						Transit:    gyms,
						Apartments: apartments,
						Vibe:       apartments,
					})

					for name, v := range map[string]int{
						"demographic_load": m.DemographicLoad,
						"connectivity":     m.Connectivity,
						"competitor_ratio": m.CompetitorRatio,
						"infrastructure":   m.Infrastructure,
						"total":            m.Total,
					} {
						assert.GreaterOrEqual(t, v, 0, name)
						assert.LessOrEqual(t, v, 100, name)
					}
				}
			}
		}
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		counts := domain.CategoryCounts{Gyms: 4, Corporates: 7, Cafes: 5, Transit: 3, Apartments: 12, Vibe: 6}
		assert.Equal(t, uc.Score(counts), uc.Score(counts))
	})

	t.Run("zero counts give zero demand and maximal gap", func(t *testing.T) {
		m := uc.Score(domain.CategoryCounts{})
		assert.Equal(t, 0, m.DemographicLoad)
		assert.Equal(t, 0, m.Connectivity)
		assert.Equal(t, 0, m.Infrastructure)
		// Ноль залов - максимальный gap-индекс даже без спроса
		assert.Equal(t, 100, m.CompetitorRatio)
		// Только gap вносит вклад: 0.30 * 100
		assert.Equal(t, 30, m.Total)
	})

	t.Run("zero gyms always max out competitor ratio", func(t *testing.T) {
		for _, demand := range []int{0, 1, 50} {
			m := uc.Score(domain.CategoryCounts{Corporates: demand, Apartments: demand})
			assert.Equal(t, 100, m.CompetitorRatio, fmt.Sprintf("demand=%d", demand))
		}
	})

	t.Run("more gyms shrink competitor ratio and demand", func(t *testing.T) {
		base := domain.CategoryCounts{Corporates: 10, Apartments: 15, Cafes: 5, Transit: 2, Vibe: 4}

		few := base
		few.Gyms = 1
		many := base
		many.Gyms = 10

		mFew := uc.Score(few)
		mMany := uc.Score(many)

		assert.Greater(t, mFew.CompetitorRatio, mMany.CompetitorRatio)
		assert.Greater(t, mFew.DemographicLoad, mMany.DemographicLoad)
		assert.Greater(t, mFew.Total, mMany.Total)
	})

	t.Run("monotonic in demand categories", func(t *testing.T) {
		low := uc.Score(domain.CategoryCounts{Gyms: 3, Corporates: 2, Apartments: 3, Cafes: 1})
		high := uc.Score(domain.CategoryCounts{Gyms: 3, Corporates: 15, Apartments: 20, Cafes: 10})
		assert.Greater(t, high.DemographicLoad, low.DemographicLoad)
		assert.Greater(t, high.Total, low.Total)
	})

	t.Run("total matches weighted composition within rounding", func(t *testing.T) {
		counts := domain.CategoryCounts{Gyms: 5, Corporates: 8, Cafes: 6, Transit: 4, Apartments: 14, Vibe: 7}
		m := uc.Score(counts)

		// Округление каждого субскора вносит не более 0.5, итог - в пределах
		// суммарной погрешности
		approx := 0.40*float64(m.DemographicLoad) +
			0.30*float64(m.CompetitorRatio) +
			0.20*float64(m.Infrastructure) +
			0.10*float64(m.Connectivity)
		assert.InDelta(t, approx, float64(m.Total), 1.0)
	})

	t.Run("saturation caps category contribution", func(t *testing.T) {
		saturated := uc.Score(domain.CategoryCounts{Transit: 8})
		overSaturated := uc.Score(domain.CategoryCounts{Transit: 800})

		require.Equal(t, 100, saturated.Connectivity)
		assert.Equal(t, 100, overSaturated.Connectivity)
	})
}
