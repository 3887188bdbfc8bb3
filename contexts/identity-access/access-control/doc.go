// Package accesscontrol implements role membership for the auction engine
// inside the identity-access context.
//
// Roles are additive sets per actor (admin, auctioneer, operator, maintainer,
// recovery). Gated operations in other modules consume the module through the
// RoleChecker port; grants and revocations are themselves admin-gated.
package accesscontrol
