package domain

// ScoringMatrix - итоговая матрица пригодности площадки.
// Все поля лежат в [0,100]; Total - фиксированная взвешенная сумма
// остальных четырех (веса задокументированы в scoring usecase).
type ScoringMatrix struct {
	DemographicLoad int `json:"demographic_load"`
	Connectivity    int `json:"connectivity"`
	CompetitorRatio int `json:"competitor_ratio"`
	Infrastructure  int `json:"infrastructure"`
	Total           int `json:"total"`
}
