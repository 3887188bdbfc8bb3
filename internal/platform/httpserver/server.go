package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	accesscontrol "gavel/contexts/identity-access/access-control"
	accesserrors "gavel/contexts/identity-access/access-control/domain/errors"
	accesshttp "gavel/contexts/identity-access/access-control/transport/http"
	systemguard "gavel/contexts/operations/system-guard"
	guarderrors "gavel/contexts/operations/system-guard/domain/errors"
	guardhttp "gavel/contexts/operations/system-guard/transport/http"
	auctionengine "gavel/contexts/trading/auction-engine"
	engineerrors "gavel/contexts/trading/auction-engine/domain/errors"
	enginehttp "gavel/contexts/trading/auction-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "gavel/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	engine auctionengine.Module
	guard  systemguard.Module
	access accesscontrol.Module
}

func New(
	engine auctionengine.Module,
	guard systemguard.Module,
	access accesscontrol.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		engine: engine,
		guard:  guard,
		access: access,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/auctions", s.handleCreateAuction)
	s.mux.HandleFunc("GET /v1/auctions/{auction_id}", s.handleGetAuction)
	s.mux.HandleFunc("POST /v1/auctions/{auction_id}/bids", s.handlePlaceBid)
	s.mux.HandleFunc("GET /v1/auctions/{auction_id}/bids/{index}", s.handleGetBid)
	s.mux.HandleFunc("POST /v1/auctions/{auction_id}/end", s.handleEndAuction)
	s.mux.HandleFunc("POST /v1/auctions/{auction_id}/cancel", s.handleCancelAuction)
	s.mux.HandleFunc("POST /v1/auctions/{auction_id}/withdrawals", s.handleWithdraw)
	s.mux.HandleFunc("GET /v1/metrics", s.handleMetrics)

	s.mux.HandleFunc("GET /v1/system/status", s.handleSystemStatus)
	s.mux.HandleFunc("GET /v1/rate-limit/{actor_id}", s.handleRateLimitStatus)

	s.mux.HandleFunc("POST /v1/admin/emergency", s.handleSetEmergency)
	s.mux.HandleFunc("POST /v1/admin/maintenance", s.handleSetMaintenance)
	s.mux.HandleFunc("POST /v1/admin/blacklist", s.handleBlacklistBidder)
	s.mux.HandleFunc("POST /v1/admin/fee", s.handleSetFee)
	s.mux.HandleFunc("POST /v1/admin/recover", s.handleRecoverToken)
	s.mux.HandleFunc("POST /v1/admin/roles/grant", s.handleGrantRole)
	s.mux.HandleFunc("POST /v1/admin/roles/revoke", s.handleRevokeRole)
	s.mux.HandleFunc("GET /v1/actors/{actor_id}/roles", s.handleListRoles)
}

// resolveActorID identifies the caller. The gateway in front of this service
// authenticates requests and forwards the subject in X-Actor-Id.
func resolveActorID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Actor-Id"))
}

func writeEngineDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engineerrors.ErrInvalidAuction):
		writeEngineError(w, http.StatusNotFound, "invalid_auction", err.Error())
	case errors.Is(err, engineerrors.ErrBidIndexOutOfRange):
		writeEngineError(w, http.StatusNotFound, "bid_index_out_of_range", err.Error())
	case errors.Is(err, engineerrors.ErrAuctionNotActive),
		errors.Is(err, engineerrors.ErrAuctionEnded),
		errors.Is(err, engineerrors.ErrAuctionNotEnded):
		writeEngineError(w, http.StatusConflict, "auction_state_conflict", err.Error())
	case errors.Is(err, engineerrors.ErrBidTooLow):
		writeEngineError(w, http.StatusUnprocessableEntity, "bid_too_low", err.Error())
	case errors.Is(err, engineerrors.ErrInvalidFeePercentage):
		writeEngineError(w, http.StatusUnprocessableEntity, "invalid_fee_percentage", err.Error())
	case errors.Is(err, engineerrors.ErrBlacklistedBidder):
		writeEngineError(w, http.StatusForbidden, "blacklisted_bidder", err.Error())
	case errors.Is(err, engineerrors.ErrInvalidAmount):
		writeEngineError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, engineerrors.ErrTransferFailed):
		writeEngineError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	case errors.Is(err, guarderrors.ErrRateLimitExceeded),
		errors.Is(err, guarderrors.ErrCooldownActive):
		writeEngineError(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case errors.Is(err, guarderrors.ErrEmergencyPaused),
		errors.Is(err, guarderrors.ErrInvalidSystemState):
		writeEngineError(w, http.StatusServiceUnavailable, "system_unavailable", err.Error())
	case errors.Is(err, accesserrors.ErrUnauthorized):
		writeEngineError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeEngineError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGuardDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, guarderrors.ErrInvalidActorID),
		errors.Is(err, guarderrors.ErrInvalidSystemState):
		writeGuardError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, guarderrors.ErrNotFound):
		writeGuardError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, accesserrors.ErrUnauthorized):
		writeGuardError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeGuardError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAccessDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accesserrors.ErrInvalidActorID),
		errors.Is(err, accesserrors.ErrInvalidRole):
		writeAccessError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, accesserrors.ErrUnauthorized):
		writeAccessError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeAccessError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeEngineError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, enginehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeGuardError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, guardhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAccessError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accesshttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
