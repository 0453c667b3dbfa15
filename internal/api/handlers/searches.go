package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"rail-route-service/internal/api/dto"
	"rail-route-service/internal/config"
	"rail-route-service/internal/metrics"
	"rail-route-service/internal/ports"
	"rail-route-service/internal/search"
)

// SearchHandler runs itinerary searches. Completed results are cached by
// run-parameter hash when a cache is wired, and winning routes are handed
// to the publisher for downstream consumers. Cache, Publisher and Metrics
// may be nil.
type SearchHandler struct {
	Catalog   *search.Catalog
	Defaults  config.SearchConfig
	Version   string
	Cache     ports.ResultCache
	Publisher ports.RoutePublisher
	Metrics   *metrics.Collector
}

func (h *SearchHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.SearchRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	params, version := h.resolve(req)
	if err := params.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	key := cacheKey(version, params)
	if h.Cache != nil {
		payload, hit, err := h.Cache.Get(r.Context(), key)
		if err != nil {
			log.Printf("result cache get failed: %v", err)
		} else if hit {
			if h.Metrics != nil {
				h.Metrics.CacheHits.Inc()
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(payload)
			return
		} else if h.Metrics != nil {
			h.Metrics.CacheMisses.Inc()
		}
	}

	searcher, err := h.Catalog.Searcher(r.Context(), version)
	if err != nil {
		log.Printf("build searcher failed: %v", err)
		if errors.Is(err, search.ErrDataInconsistency) {
			writeError(w, r, http.StatusInternalServerError, "timetable data is inconsistent")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.Metrics != nil {
		h.Metrics.SearchesStarted.Inc()
	}

	result, err := searcher.Run(r.Context(), params)
	if err != nil {
		log.Printf("search failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.Metrics != nil {
		h.Metrics.SearchesFinished.WithLabelValues(string(result.Status)).Inc()
		h.Metrics.NodesExpanded.Add(float64(result.Stats.NodesExpanded))
		h.Metrics.Backtracks.Add(float64(result.Stats.Backtracks))
		h.Metrics.BestDistanceKm.Set(result.TotalKm)
		h.Metrics.SearchDuration.Observe(result.Stats.Elapsed.Seconds())
	}

	res := buildSearchResponse(result, params, version)
	payload, err := json.Marshal(res)
	if err != nil {
		log.Printf("marshal search response failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Put(r.Context(), key, payload); err != nil {
			log.Printf("result cache put failed: %v", err)
		}
	}

	if h.Publisher != nil && len(result.Legs) > 0 {
		if err := h.Publisher.PublishBestRoute(r.Context(), params.StartStation, payload); err != nil {
			log.Printf("publish best route failed: %v", err)
			if h.Metrics != nil {
				h.Metrics.PublishErrs.Inc()
			}
		} else if h.Metrics != nil {
			h.Metrics.RoutesPublished.Inc()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// resolve merges the request overrides onto the configured defaults.
func (h *SearchHandler) resolve(req dto.SearchRequest) (search.Params, string) {
	d := h.Defaults

	params := search.Params{
		StartStation: d.StartStation,
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		MinTransfer:  d.MinTransfer,
		MaxTransfer:  d.MaxTransfer,
		BranchFactor: d.BranchFactor,
		MaxNodes:     d.MaxNodes,
		Timeout:      d.Timeout,
		Trace:        d.Trace,
	}

	if s := strings.TrimSpace(req.StartStation); s != "" {
		params.StartStation = s
	}
	if req.StartTime != nil {
		params.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		params.EndTime = *req.EndTime
	}
	if req.MinTransferMin != nil {
		params.MinTransfer = time.Duration(*req.MinTransferMin) * time.Minute
	}
	if req.MaxTransferMin != nil {
		params.MaxTransfer = time.Duration(*req.MaxTransferMin) * time.Minute
	}
	if req.BranchFactor != nil {
		params.BranchFactor = *req.BranchFactor
	}

	version := h.Version
	if v := strings.TrimSpace(req.Version); v != "" {
		version = v
	}
	return params, version
}

func buildSearchResponse(result *search.Result, params search.Params, version string) dto.SearchResponse {
	legs := make([]dto.SearchLegResponse, 0, len(result.Legs))
	for _, leg := range result.Legs {
		legs = append(legs, dto.SearchLegResponse{
			ServiceID:   leg.ServiceID,
			Origin:      leg.Origin,
			Destination: leg.Destination,
			ServiceType: string(leg.Type),
			Departure:   leg.Departure,
			Arrival:     leg.Arrival,
			CountedKm:   leg.CountedKm,
			RunningKm:   leg.RunningKm,
		})
	}

	return dto.SearchResponse{
		Status:           string(result.Status),
		Version:          version,
		StartStation:     params.StartStation,
		StartTime:        params.StartTime,
		EndTime:          params.EndTime,
		TotalKm:          result.TotalKm,
		TotalHectometers: result.Hectometers,
		Legs:             legs,
		Stats: dto.SearchStatsResponse{
			NodesExpanded: result.Stats.NodesExpanded,
			Backtracks:    result.Stats.Backtracks,
			MaxDepth:      result.Stats.MaxDepth,
			ElapsedMs:     result.Stats.Elapsed.Milliseconds(),
		},
	}
}

// cacheKey hashes the full run-parameter set; two requests share a cache
// entry only when every parameter that can change the outcome matches.
func cacheKey(version string, p search.Params) string {
	canonical := fmt.Sprintf("%s|%s|%d|%d|%d|%d|%d",
		version, p.StartStation,
		p.StartTime.Unix(), p.EndTime.Unix(),
		int(p.MinTransfer/time.Minute), int(p.MaxTransfer/time.Minute),
		p.BranchFactor,
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
