package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Monetary fields travel as decimal strings end to end.

type CreateAuctionRequest struct {
	AssetID          string `json:"asset_id"`
	PaymentAsset     string `json:"payment_asset,omitempty"`
	ReservePrice     string `json:"reserve_price"`
	BuyNowPrice      string `json:"buy_now_price"`
	MinIncrement     string `json:"min_increment"`
	DurationSeconds  int64  `json:"duration_seconds"`
	ExtensionSeconds int64  `json:"extension_seconds,omitempty"`
	WindowSeconds    int64  `json:"window_seconds,omitempty"`
}

type CreateAuctionResponse struct {
	Status string `json:"status"`
	Data   struct {
		AuctionID int64 `json:"auction_id"`
	} `json:"data"`
}

type AuctionDTO struct {
	AuctionID     int64  `json:"auction_id"`
	Owner         string `json:"owner"`
	AssetID       string `json:"asset_id"`
	PaymentAsset  string `json:"payment_asset"`
	ReservePrice  string `json:"reserve_price"`
	BuyNowPrice   string `json:"buy_now_price"`
	MinIncrement  string `json:"min_increment"`
	EndTime       string `json:"end_time"`
	Active        bool   `json:"active"`
	Canceled      bool   `json:"canceled"`
	HighestBidder string `json:"highest_bidder,omitempty"`
	HighestBid    string `json:"highest_bid"`
	BidCount      int    `json:"bid_count"`
	CreatedAt     string `json:"created_at"`
}

type AuctionResponse struct {
	Status string     `json:"status"`
	Data   AuctionDTO `json:"data"`
}

type PlaceBidRequest struct {
	Amount     string `json:"amount"`
	PaidAmount string `json:"paid_amount,omitempty"`
}

type BidDTO struct {
	Bidder   string `json:"bidder"`
	Amount   string `json:"amount"`
	PlacedAt string `json:"placed_at"`
}

type BidResponse struct {
	Status string `json:"status"`
	Data   BidDTO `json:"data"`
}

type WithdrawResponse struct {
	Status string `json:"status"`
	Data   struct {
		Amount string `json:"amount"`
	} `json:"data"`
}

type MetricsResponse struct {
	Status string `json:"status"`
	Data   struct {
		TotalAuctions  int64  `json:"total_auctions"`
		ActiveAuctions int64  `json:"active_auctions"`
		TotalVolume    string `json:"total_volume"`
		LastUpdateAt   string `json:"last_update_at,omitempty"`
	} `json:"data"`
}

type SetFeeRequest struct {
	FeeBps int64 `json:"fee_bps"`
}

type RecoverTokenRequest struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
