package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	enginehttp "gavel/contexts/trading/auction-engine/transport/http"
)

func (s *Server) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeEngineError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	var req enginehttp.CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEngineError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engine.Handler.CreateAuctionHandler(r.Context(), actorID, req)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := parseAuctionID(w, r)
	if !ok {
		return
	}
	resp, err := s.engine.Handler.GetAuctionHandler(r.Context(), auctionID)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeEngineError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	auctionID, ok := parseAuctionID(w, r)
	if !ok {
		return
	}
	var req enginehttp.PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEngineError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engine.Handler.PlaceBidHandler(r.Context(), actorID, auctionID, req)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBid(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := parseAuctionID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeEngineError(w, http.StatusBadRequest, "invalid_bid_index", "bid index must be an integer")
		return
	}
	resp, err := s.engine.Handler.GetBidHandler(r.Context(), auctionID, index)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEndAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := parseAuctionID(w, r)
	if !ok {
		return
	}
	resp, err := s.engine.Handler.EndAuctionHandler(r.Context(), auctionID)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelAuction(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeEngineError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	auctionID, ok := parseAuctionID(w, r)
	if !ok {
		return
	}
	resp, err := s.engine.Handler.CancelAuctionHandler(r.Context(), actorID, auctionID)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeEngineError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	auctionID, ok := parseAuctionID(w, r)
	if !ok {
		return
	}
	resp, err := s.engine.Handler.WithdrawHandler(r.Context(), actorID, auctionID)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.MetricsHandler(r.Context())
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetFee(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeEngineError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	var req enginehttp.SetFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEngineError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engine.Handler.SetFeeHandler(r.Context(), actorID, req)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecoverToken(w http.ResponseWriter, r *http.Request) {
	actorID := resolveActorID(r)
	if actorID == "" {
		writeEngineError(w, http.StatusUnauthorized, "missing_actor", "X-Actor-Id header is required")
		return
	}
	var req enginehttp.RecoverTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEngineError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engine.Handler.RecoverTokenHandler(r.Context(), actorID, req)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseAuctionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	auctionID, err := strconv.ParseInt(r.PathValue("auction_id"), 10, 64)
	if err != nil || auctionID <= 0 {
		writeEngineError(w, http.StatusBadRequest, "invalid_auction_id", "auction id must be a positive integer")
		return 0, false
	}
	return auctionID, true
}
