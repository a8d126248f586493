package usecase

import (
	"math"

	"github.com/siteintel-service/internal/domain"
)

// Канонической выбрана счетная лог-нормализованная стратегия скоринга:
// каждая категория проходит через log1p(count)/log1p(saturation)*100,
// что дает убывающую отдачу и ограничивает вклад любой одной категории.
//
// Точки насыщения на категорию
const (
	saturationApartments = 25
	saturationCorporates = 20
	saturationCafes      = 15
	saturationGyms       = 12
	saturationTransit    = 8
	saturationVibe       = 20

	// Целевое отношение спроса к предложению для gap-индекса
	targetDemandRatio = 5.0

	// Максимальная доля, на которую конкуренты-залы съедают спрос
	gymPenaltyShare = 0.35
)

// Веса субскоров внутри demographic load
const (
	demandWeightApartments = 0.45
	demandWeightCorporates = 0.35
	demandWeightCafes      = 0.20
)

// Веса итоговой композиции: спрос / gap / инфраструктура / связность
const (
	totalWeightDemand         = 0.40
	totalWeightGap            = 0.30
	totalWeightInfrastructure = 0.20
	totalWeightConnectivity   = 0.10
)

// ScoringUseCase - чистый расчет матрицы пригодности из счетчиков POI.
// Без состояния и без I/O; одинаковые входы дают одинаковую матрицу.
type ScoringUseCase struct{}

// NewScoringUseCase - создание нового ScoringUseCase
func NewScoringUseCase() *ScoringUseCase {
	return &ScoringUseCase{}
}

// Score считает матрицу по счетчикам категорий. Все поля лежат в [0,100];
// внутренние вычисления во float, округление только на выходе.
func (uc *ScoringUseCase) Score(counts domain.CategoryCounts) domain.ScoringMatrix {
	demand := uc.demographicLoad(counts)
	gap := uc.gapIndex(counts)
	connectivity := logNorm(counts.Transit, saturationTransit)
	infrastructure := logNorm(counts.Vibe+counts.Cafes, saturationVibe)

	total := totalWeightDemand*demand +
		totalWeightGap*gap +
		totalWeightInfrastructure*infrastructure +
		totalWeightConnectivity*connectivity

	return domain.ScoringMatrix{
		DemographicLoad: roundScore(demand),
		Connectivity:    roundScore(connectivity),
		CompetitorRatio: roundScore(gap),
		Infrastructure:  roundScore(infrastructure),
		Total:           roundScore(total),
	}
}

// demographicLoad - взвешенная сумма жилого, офисного и кафе-субскоров,
// урезанная штрафом за плотность залов-конкурентов (до 35% в насыщении)
func (uc *ScoringUseCase) demographicLoad(counts domain.CategoryCounts) float64 {
	base := demandWeightApartments*logNorm(counts.Apartments, saturationApartments) +
		demandWeightCorporates*logNorm(counts.Corporates, saturationCorporates) +
		demandWeightCafes*logNorm(counts.Cafes, saturationCafes)

	penalty := 1.0 - gymPenaltyShare*logNorm(counts.Gyms, saturationGyms)/100.0

	return clamp(base * penalty)
}

// gapIndex - лог-нормализация того же отношения спрос/предложение, что и в
// классификации marketGap, против целевого отношения 5:1.
// Ноль залов дает максимальный индекс.
func (uc *ScoringUseCase) gapIndex(counts domain.CategoryCounts) float64 {
	if counts.Gyms == 0 {
		return 100.0
	}

	demandUnits := float64(counts.Corporates) + 0.8*float64(counts.Apartments)
	ratio := demandUnits / float64(counts.Gyms)

	return clamp(math.Log1p(ratio) / math.Log1p(targetDemandRatio) * 100.0)
}

// logNorm нормализует счетчик против точки насыщения в [0,100]
func logNorm(count, saturation int) float64 {
	if count <= 0 {
		return 0
	}
	return clamp(math.Log1p(float64(count)) / math.Log1p(float64(saturation)) * 100.0)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func roundScore(v float64) int {
	return int(math.Round(clamp(v)))
}
