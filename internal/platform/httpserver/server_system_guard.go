package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	guardhttp "gavel/contexts/operations/system-guard/transport/http"
)

func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.guard.Handler.SystemStatusHandler(r.Context())
	if err != nil {
		writeGuardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	actorID := r.PathValue("actor_id")
	resp, err := s.guard.Handler.RateLimitStatusHandler(r.Context(), actorID, time.Now().UTC())
	if err != nil {
		writeGuardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetEmergency(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeGuardError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	var req guardhttp.SetEmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGuardError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.guard.Handler.SetEmergencyHandler(r.Context(), actorID, req)
	if err != nil {
		writeGuardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetMaintenance(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeGuardError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	var req guardhttp.SetMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGuardError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.guard.Handler.SetMaintenanceHandler(r.Context(), actorID, req)
	if err != nil {
		writeGuardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBlacklistBidder(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeGuardError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	var req guardhttp.BlacklistBidderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGuardError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.guard.Handler.BlacklistBidderHandler(r.Context(), actorID, req)
	if err != nil {
		writeGuardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
