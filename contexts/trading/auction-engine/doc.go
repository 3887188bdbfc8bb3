// Package auctionengine implements the multi-auction escrow and bidding
// engine inside the trading context.
//
// The module owns auction lifecycle (create/bid/end/cancel), the append-only
// bid ledger, escrow balances owed to outbid parties, the custody ledger that
// protects bidder-owed funds from admin recovery, and the system metrics
// rollup. Every gated command validates all preconditions first and commits
// atomically; settlement side effects go through the PaymentAdapter port and
// domain events through the outbox.
package auctionengine
