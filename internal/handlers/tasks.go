package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avolkhin/sqlarena/internal/app"
	"github.com/avolkhin/sqlarena/internal/metrics"
	"github.com/avolkhin/sqlarena/internal/models"
)

type TaskHandler struct {
	service *app.Service
}

func NewTaskHandler(service *app.Service) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var t models.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateTask(principal, &t)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}

	var payload struct {
		Title    string `json:"title"`
		Solution string `json:"solution"`
		Image    string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateTask(principal, id, payload.Title, payload.Solution, payload.Image); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "task updated"})
}

func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteTask(principal, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}

	task, err := h.service.GetTask(principal, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
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

	tasks, err := h.service.ListTasks(principal, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"rows": tasks})
}

// HandleCheck grades a participant submission. The grading outcome is not
// returned inline; participants read their answer separately.
func (h *TaskHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.APIRequestDuration.WithLabelValues(
			r.Pattern,
			r.Method,
			"200",
		).Observe(time.Since(start).Seconds())
	}()

	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}

	var payload struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Query == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SubmitAnswer(r.Context(), principal, id, payload.Query); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "answer recorded"})
}

func (h *TaskHandler) HandleOwnAnswer(w http.ResponseWriter, r *http.Request) {
	principal, err := h.service.Auth.Principal(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return
	}

	answer, err := h.service.OwnAnswer(principal, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}
