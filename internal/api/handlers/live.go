package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/liga/backend/internal/realtime"
)

// LiveHandler upgrades public display pages to a standings feed
type LiveHandler struct {
	hub *realtime.Hub
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(hub *realtime.Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// Division streams one division's standings
// GET /api/stages/{stage}/divisions/{division}/live
func (h *LiveHandler) Division(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	realtime.ServeWs(h.hub, w, r, vars["stage"], vars["division"])
}

// All streams every division
// GET /ws/standings
func (h *LiveHandler) All(w http.ResponseWriter, r *http.Request) {
	realtime.ServeWs(h.hub, w, r, "", "")
}
