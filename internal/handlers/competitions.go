package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/avolkhin/sqlarena/internal/app"
	"github.com/avolkhin/sqlarena/internal/metrics"
	"github.com/avolkhin/sqlarena/internal/models"
)

type CompetitionHandler struct {
	service *app.Service
}

func NewCompetitionHandler(service *app.Service) *CompetitionHandler {
	return &CompetitionHandler{
		service: service,
	}
}

func (h *CompetitionHandler) observe(r *http.Request, start time.Time, status string) {
	metrics.APIRequestDuration.WithLabelValues(
		r.Pattern,
		r.Method,
		status,
	).Observe(time.Since(start).Seconds())
}

func (h *CompetitionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer h.observe(r, start, "200")

	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var c models.Competition
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateCompetition(r.Context(), principal, &c)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *CompetitionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid competition id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteCompetition(r.Context(), principal, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "competition deleted"})
}

func (h *CompetitionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid competition id", http.StatusBadRequest)
		return
	}

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Image       string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateCompetitionInfo(principal, id, payload.Name, payload.Description, payload.Image); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "competition updated"})
}

func (h *CompetitionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid competition id", http.StatusBadRequest)
		return
	}

	c, err := h.service.GetCompetition(principal, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CompetitionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Auth.Principal(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	state := models.CompetitionState(r.URL.Query().Get("state"))
	switch state {
	case "", models.StatePlanned, models.StateCurrent, models.StateFinished:
	default:
		http.Error(w, "Invalid state filter", http.StatusBadRequest)
		return
	}

	comps, err := h.service.ListCompetitions(state)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rows": comps})
}

func (h *CompetitionHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid competition id", http.StatusBadRequest)
		return
	}

	state, err := h.service.CompetitionState(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}

// HandleQuery runs an organizer's test statement and returns the raw CSV.
func (h *CompetitionHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer h.observe(r, start, "200")

	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid competition id", http.StatusBadRequest)
		return
	}

	var payload struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Query == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.RunOrganizerQuery(r.Context(), principal, id, payload.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Write([]byte(result))
}

func (h *CompetitionHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid competition id", http.StatusBadRequest)
		return
	}

	standings, err := h.service.Leaderboard(principal, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"standings": standings})
}

// HandleTime exposes the service clock the schedule runs on.
func (h *CompetitionHandler) HandleTime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"now":      h.service.Clock.Now().Format(time.RFC3339),
		"now_unix": h.service.Clock.NowUnix(),
	})
}
