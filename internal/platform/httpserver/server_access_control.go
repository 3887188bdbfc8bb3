package httpserver

import (
	"encoding/json"
	"net/http"

	accesshttp "gavel/contexts/identity-access/access-control/transport/http"
)

func (s *Server) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	var req accesshttp.GrantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.access.Handler.GrantRoleHandler(r.Context(), actorID, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	var req accesshttp.RevokeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAccessError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.access.Handler.RevokeRoleHandler(r.Context(), actorID, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	resp, err := s.access.Handler.ListRolesHandler(r.Context(), r.PathValue("actor_id"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
