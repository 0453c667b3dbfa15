package dto

type StationResponse struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type ListStationsResponse struct {
	Stations []StationResponse `json:"stations"`
}
