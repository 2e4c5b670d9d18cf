package hermes

import "time"

type RecommendationGeneratedEvent struct {
	RequestID            string    `json:"request_id,omitempty"`
	Fingerprint          string    `json:"fingerprint"`
	TopN                 int       `json:"top_n"`
	CandidatesScored     int       `json:"candidates_scored"`
	TotalRecommendations int       `json:"total_recommendations"`
	VehicleIDs           []string  `json:"vehicle_ids"`
	TopMatch             float64   `json:"top_match,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
}

type FuelPriceUpdatedEvent struct {
	Price     float64    `json:"price"`
	Source    string     `json:"source"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type InventoryChangedEvent struct {
	VehicleID string `json:"vehicle_id"`
	Change    string `json:"change"` // created, updated, sold, removed
}
