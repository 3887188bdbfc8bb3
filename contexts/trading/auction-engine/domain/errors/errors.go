package errors

import "errors"

var (
	ErrInvalidFeePercentage = errors.New("platform fee percentage out of range")
	ErrInvalidAuction       = errors.New("auction does not exist or has no bids")
	ErrAuctionNotActive     = errors.New("auction is not active")
	ErrBidTooLow            = errors.New("bid does not exceed highest bid plus minimum increment")
	ErrAuctionEnded         = errors.New("auction end time has passed")
	ErrAuctionNotEnded      = errors.New("auction end time has not been reached")
	ErrBlacklistedBidder    = errors.New("bidder is blacklisted")
	ErrTransferFailed       = errors.New("payment adapter transfer failed")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrBidIndexOutOfRange   = errors.New("bid index out of range")
	ErrInvalidEvent         = errors.New("invalid event envelope")
	ErrEventConflict        = errors.New("event id already recorded with a different payload")
)
