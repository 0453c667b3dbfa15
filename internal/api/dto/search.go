package dto

import "time"

// SearchRequest overrides the configured run defaults per field; nil or
// empty fields keep the default.
type SearchRequest struct {
	StartStation   string     `json:"start_station"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	MinTransferMin *int       `json:"min_transfer_min"`
	MaxTransferMin *int       `json:"max_transfer_min"`
	BranchFactor   *int       `json:"branch_factor"`
	Version        string     `json:"version"`
}

type SearchLegResponse struct {
	ServiceID   string    `json:"service_id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	ServiceType string    `json:"service_type"`
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
	CountedKm   float64   `json:"counted_km"`
	RunningKm   float64   `json:"running_km"`
}

type SearchStatsResponse struct {
	NodesExpanded int   `json:"nodes_expanded"`
	Backtracks    int   `json:"backtracks"`
	MaxDepth      int   `json:"max_depth"`
	ElapsedMs     int64 `json:"elapsed_ms"`
}

type SearchResponse struct {
	Status           string              `json:"status"`
	Version          string              `json:"version"`
	StartStation     string              `json:"start_station"`
	StartTime        time.Time           `json:"start_time"`
	EndTime          time.Time           `json:"end_time"`
	TotalKm          float64             `json:"total_km"`
	TotalHectometers int                 `json:"total_hectometers"`
	Legs             []SearchLegResponse `json:"legs"`
	Stats            SearchStatsResponse `json:"stats"`
}
