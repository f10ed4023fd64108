// Package api serves a read-only HTTP view of a running simulation.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/viant/atc/model"
	"github.com/viant/atc/progress"
	"github.com/viant/atc/service/detector"
	"github.com/viant/atc/service/pool"
	"github.com/viant/atc/service/queue"
)

// Airport is the state the API reads from.
type Airport interface {
	Flights() []model.Summary
	Flight(flightID int) (*model.Flight, bool)
	Pool(kind model.Kind) *pool.Pool
	Queue(kind model.Kind) *queue.Queue
	Detect() detector.Detection
}

// Resource describes one resource kind.
type Resource struct {
	Kind      string        `json:"kind"`
	Capacity  int           `json:"capacity"`
	Available int           `json:"available"`
	Queue     []queue.Entry `json:"queue"`
}

// StatsResponse is the /stats payload.
type StatsResponse struct {
	progress.Snapshot
	Active      int    `json:"active"`
	AverageWait string `json:"averageWait"`
	MaxWait     string `json:"maxWait"`
}

type Server struct {
	airport Airport
	stats   *progress.Stats
}

// New constructs the HTTP router. metrics may be nil.
func New(airport Airport, stats *progress.Stats, metrics http.Handler) http.Handler {
	s := &Server{airport: airport, stats: stats}
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/stats", s.handleStats)
	r.Get("/flights", s.handleFlights)
	r.Get("/flights/{id}", s.handleFlight)
	r.Get("/resources", s.handleResources)
	r.Get("/deadlock", s.handleDeadlock)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snapshot := s.stats.Snapshot()
	response := StatsResponse{
		Snapshot:    snapshot,
		Active:      snapshot.Active(),
		AverageWait: snapshot.AverageWait().String(),
		MaxWait:     snapshot.MaxWait().String(),
	}
	if r.URL.Query().Get("samples") != "true" {
		response.Snapshot.WaitSamples = nil
	}
	writeJSON(w, response)
}

func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	flights := s.airport.Flights()
	if state := r.URL.Query().Get("state"); state != "" {
		filtered := make([]model.Summary, 0, len(flights))
		for _, f := range flights {
			if string(f.State) == state {
				filtered = append(filtered, f)
			}
		}
		flights = filtered
	}
	writeJSON(w, flights)
}

func (s *Server) handleFlight(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid flight id")
		return
	}
	f, ok := s.airport.Flight(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "flight not found")
		return
	}
	writeJSON(w, f.Summary())
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	result := make([]Resource, 0, model.KindCount)
	for _, kind := range model.Kinds() {
		p := s.airport.Pool(kind)
		result = append(result, Resource{
			Kind:      kind.String(),
			Capacity:  p.Capacity(),
			Available: p.Available(),
			Queue:     s.airport.Queue(kind).Entries(),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleDeadlock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.airport.Detect())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
