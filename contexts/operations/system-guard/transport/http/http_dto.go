package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SetEmergencyRequest struct {
	Enabled bool `json:"enabled"`
}

type SetMaintenanceRequest struct {
	Enabled bool `json:"enabled"`
}

type BlacklistBidderRequest struct {
	BidderID string `json:"bidder_id"`
}

type SystemStatusResponse struct {
	Status string `json:"status"`
	Data   struct {
		State  string `json:"state"`
		Paused bool   `json:"paused"`
	} `json:"data"`
}

type RateLimitStatusResponse struct {
	Status string `json:"status"`
	Data   struct {
		ActionsRemaining int    `json:"actions_remaining"`
		WindowResetsAt   string `json:"window_resets_at,omitempty"`
		CooldownEndsAt   string `json:"cooldown_ends_at,omitempty"`
	} `json:"data"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
