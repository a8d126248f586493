package domain

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}

// PrewarmRequest - задание на предварительный прогрев ward-кеша
type PrewarmRequest struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_meters"`
	RequestID    string  `json:"request_id,omitempty"`
}
