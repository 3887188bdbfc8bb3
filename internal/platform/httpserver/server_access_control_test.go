package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	accesshttp "gavel/contexts/identity-access/access-control/transport/http"
)

func TestGrantRoleRequiresAdmin(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/admin/roles/grant", "mallory", []byte(`{"actor_id":"bob","role":"auctioneer"}`))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGrantAndRevokeRoleRoundTrip(t *testing.T) {
	server := newTestServer()

	rr := doJSON(t, server, http.MethodPost, "/v1/admin/roles/grant", "root", []byte(`{"actor_id":"bob","role":"auctioneer"}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	list := httptest.NewRequest(http.MethodGet, "/v1/actors/bob/roles", nil)
	lrr := httptest.NewRecorder()
	server.mux.ServeHTTP(lrr, list)
	if lrr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", lrr.Code, lrr.Body.String())
	}
	var resp accesshttp.ListRolesResponse
	if err := json.Unmarshal(lrr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode roles response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Role != "auctioneer" {
		t.Fatalf("unexpected grants: %+v", resp.Data)
	}

	revoke := doJSON(t, server, http.MethodPost, "/v1/admin/roles/revoke", "root", []byte(`{"actor_id":"bob","role":"auctioneer"}`))
	if revoke.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", revoke.Code, revoke.Body.String())
	}
}

func TestGrantRoleRejectsUnknownRole(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPost, "/v1/admin/roles/grant", "root", []byte(`{"actor_id":"bob","role":"overlord"}`))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}
