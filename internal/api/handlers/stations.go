package handlers

import (
	"log"
	"net/http"

	"rail-route-service/internal/api/dto"
	"rail-route-service/internal/ports"
)

// StationHandler exposes read-only station reference data.
type StationHandler struct {
	Repo ports.TimetableRepository
}

func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stations, err := h.Repo.ListStations(r.Context())
	if err != nil {
		log.Printf("list stations failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListStationsResponse{
		Stations: make([]dto.StationResponse, 0, len(stations)),
	}
	for _, st := range stations {
		res.Stations = append(res.Stations, dto.StationResponse{
			Code: st.Code,
			Name: st.Name,
			Lat:  st.Lat,
			Lon:  st.Lon,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
