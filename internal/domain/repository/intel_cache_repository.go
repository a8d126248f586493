package repository

import (
	"context"

	"github.com/siteintel-service/internal/domain"
)

// IntelCacheRepository определяет методы долговременного (ward) уровня кеша.
// Уровень best-effort: ошибки чтения трактуются как промах, ошибки записи
// логируются и не всплывают - корректность от кеша не зависит.
type IntelCacheRepository interface {
	// GetWard возвращает агрегат по ward-ключу или nil при промахе
	GetWard(ctx context.Context, wardKey string) (*domain.AggregatedIntel, error)

	// SetWard сохраняет агрегат, вытесняя запись с самым ранним истечением
	// при достижении лимита емкости
	SetWard(ctx context.Context, wardKey string, intel *domain.AggregatedIntel) error
}
