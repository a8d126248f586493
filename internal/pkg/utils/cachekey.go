package utils

import (
	"fmt"
	"sort"
	"strings"
)

// POICacheKey строит ключ memory-кеша: округленные координаты, радиус и
// отсортированный набор типов, чтобы порядок категорий не влиял на ключ
func POICacheKey(lat, lng, radiusMeters float64, includedTypes []string) string {
	sorted := make([]string, len(includedTypes))
	copy(sorted, includedTypes)
	sort.Strings(sorted)

	return fmt.Sprintf("poi:%.4f:%.4f:%.0f:%s", lat, lng, radiusMeters, strings.Join(sorted, ","))
}

// WardKey строит ключ ward-кеша. Округление грубее, чем у memory-ключа:
// близкие запросы намеренно попадают в один ward-бакет (~1 км)
func WardKey(lat, lng, radiusMeters float64) string {
	return fmt.Sprintf("ward:%.2f:%.2f:%.0f", lat, lng, radiusMeters)
}
