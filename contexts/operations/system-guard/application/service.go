package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"gavel/contexts/operations/system-guard/domain/entities"
	domainerrors "gavel/contexts/operations/system-guard/domain/errors"
	"gavel/contexts/operations/system-guard/ports"
)

const (
	roleAdmin      = "admin"
	roleOperator   = "operator"
	roleMaintainer = "maintainer"
)

// Throttle tunables applied by the in-memory wiring. The service itself uses
// its fields as given: a zero period, cap, or cooldown disables that control.
const (
	DefaultRateLimitPeriod = time.Hour
	DefaultMaxActions      = 100
	DefaultBidCooldown     = 60 * time.Second
)

// Service owns the system state machine, the per-actor throttle records, and
// the bidder blacklist.
//
// Throttle checks are split into a read-only Check step and a mutating Record
// step so a gated operation can validate everything before committing any
// state, including its own quota consumption.
type Service struct {
	Store           ports.GuardStore
	Roles           ports.RoleChecker
	Outbox          ports.OutboxWriter
	Clock           ports.Clock
	IDGen           ports.IDGenerator
	RateLimitPeriod time.Duration
	MaxActions      int
	BidCooldown     time.Duration
	Logger          *slog.Logger
}

// SetEmergencyState flips the circuit breaker. Enabling moves the system to
// emergency and pauses it in the same step; disabling returns to active and
// unpauses. Admin-gated.
func (s Service) SetEmergencyState(ctx context.Context, adminID string, enabled bool) error {
	logger := ResolveLogger(s.Logger)
	if err := s.Roles.RequireRole(ctx, adminID, roleAdmin); err != nil {
		return err
	}

	status := entities.SystemStatus{State: entities.StateActive, Paused: false}
	if enabled {
		status = entities.SystemStatus{State: entities.StateEmergency, Paused: true}
	}
	if err := s.Store.PutSystemStatus(ctx, status); err != nil {
		return err
	}

	now := s.now()
	if err := s.appendEvent(ctx, "system.state_changed", strings.TrimSpace(adminID), now, map[string]any{
		"state":      string(status.State),
		"paused":     status.Paused,
		"changed_by": strings.TrimSpace(adminID),
	}); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, "system.emergency_action", strings.TrimSpace(adminID), now, map[string]any{
		"enabled":  enabled,
		"admin_id": strings.TrimSpace(adminID),
	}); err != nil {
		return err
	}

	logger.Info("emergency state changed",
		"event", "guard_emergency_state_changed",
		"module", "operations/system-guard",
		"layer", "application",
		"admin_id", strings.TrimSpace(adminID),
		"enabled", enabled,
	)
	return nil
}

// SetMaintenanceMode toggles active<->maintenance without touching the pause
// flag. Maintainer-gated.
func (s Service) SetMaintenanceMode(ctx context.Context, maintainerID string, enabled bool) error {
	logger := ResolveLogger(s.Logger)
	if err := s.Roles.RequireRole(ctx, maintainerID, roleMaintainer); err != nil {
		return err
	}

	status, err := s.Store.GetSystemStatus(ctx)
	if err != nil {
		return err
	}
	if enabled {
		status.State = entities.StateMaintenance
	} else {
		status.State = entities.StateActive
	}
	if err := s.Store.PutSystemStatus(ctx, status); err != nil {
		return err
	}

	if err := s.appendEvent(ctx, "system.state_changed", strings.TrimSpace(maintainerID), s.now(), map[string]any{
		"state":      string(status.State),
		"paused":     status.Paused,
		"changed_by": strings.TrimSpace(maintainerID),
	}); err != nil {
		return err
	}

	logger.Info("maintenance mode changed",
		"event", "guard_maintenance_mode_changed",
		"module", "operations/system-guard",
		"layer", "application",
		"maintainer_id", strings.TrimSpace(maintainerID),
		"enabled", enabled,
	)
	return nil
}

// AssertOperable gates bidding and creation. The pause flag fires first, in
// any state; a non-active state blocks on its own even while unpaused.
func (s Service) AssertOperable(ctx context.Context) error {
	status, err := s.Store.GetSystemStatus(ctx)
	if err != nil {
		return err
	}
	if status.Paused {
		return domainerrors.ErrEmergencyPaused
	}
	if status.State != entities.StateActive {
		return domainerrors.ErrInvalidSystemState
	}
	return nil
}

// Status returns the current mode and pause flag.
func (s Service) Status(ctx context.Context) (entities.SystemStatus, error) {
	return s.Store.GetSystemStatus(ctx)
}

// CheckAction evaluates the fixed rate window for the actor at time t without
// consuming quota. The window does not slide: inside an unexpired window the
// cap applies; at or past expiry the action would reset the window instead of
// counting against the old one.
func (s Service) CheckAction(ctx context.Context, actorID string, t time.Time) error {
	if strings.TrimSpace(actorID) == "" {
		return domainerrors.ErrInvalidActorID
	}
	record, found, err := s.Store.GetThrottle(ctx, strings.TrimSpace(actorID))
	if err != nil {
		return err
	}
	if s.MaxActions > 0 && found && t.Before(record.WindowStart.Add(s.RateLimitPeriod)) {
		if record.Count >= s.MaxActions {
			return domainerrors.ErrRateLimitExceeded
		}
	}
	return nil
}

// RecordAction consumes quota for an action that fully committed. Callers
// must have passed CheckAction with the same timestamp first.
func (s Service) RecordAction(ctx context.Context, actorID string, t time.Time) error {
	actorID = strings.TrimSpace(actorID)
	record, found, err := s.Store.GetThrottle(ctx, actorID)
	if err != nil {
		return err
	}
	if found && t.Before(record.WindowStart.Add(s.RateLimitPeriod)) {
		record.Count++
	} else {
		record = entities.ThrottleRecord{WindowStart: t, Count: 1}
	}
	return s.Store.PutThrottle(ctx, actorID, record)
}

// CheckBidCooldown fails while the actor's previous successful bid is less
// than the cooldown interval old. A zero cooldown never blocks.
func (s Service) CheckBidCooldown(ctx context.Context, actorID string, t time.Time) error {
	if strings.TrimSpace(actorID) == "" {
		return domainerrors.ErrInvalidActorID
	}
	lastBidAt, found, err := s.Store.GetLastBidAt(ctx, strings.TrimSpace(actorID))
	if err != nil {
		return err
	}
	if s.BidCooldown > 0 && found && t.Before(lastBidAt.Add(s.BidCooldown)) {
		return domainerrors.ErrCooldownActive
	}
	return nil
}

// ArmBidCooldown stamps the cooldown after a bid fully commits. A failed bid
// never arms the cooldown.
func (s Service) ArmBidCooldown(ctx context.Context, actorID string, t time.Time) error {
	return s.Store.PutLastBidAt(ctx, strings.TrimSpace(actorID), t)
}

// IsBlacklisted reports blacklist membership for a bidder.
func (s Service) IsBlacklisted(ctx context.Context, bidderID string) (bool, error) {
	return s.Store.IsBlacklisted(ctx, strings.TrimSpace(bidderID))
}

// BlacklistBidder adds a bidder to the blacklist. Operator- or admin-gated.
func (s Service) BlacklistBidder(ctx context.Context, operatorID string, bidderID string) error {
	logger := ResolveLogger(s.Logger)
	if strings.TrimSpace(bidderID) == "" {
		return domainerrors.ErrInvalidActorID
	}
	if err := s.Roles.RequireAnyRole(ctx, operatorID, roleOperator, roleAdmin); err != nil {
		return err
	}
	if err := s.Store.AddBlacklist(ctx, strings.TrimSpace(bidderID)); err != nil {
		return err
	}

	now := s.now()
	if err := s.appendEvent(ctx, "system.bidder_blacklisted", strings.TrimSpace(bidderID), now, map[string]any{
		"bidder_id":   strings.TrimSpace(bidderID),
		"operator_id": strings.TrimSpace(operatorID),
	}); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, "system.security_alert", strings.TrimSpace(bidderID), now, map[string]any{
		"alert":       "bidder_blacklisted",
		"bidder_id":   strings.TrimSpace(bidderID),
		"operator_id": strings.TrimSpace(operatorID),
	}); err != nil {
		return err
	}

	logger.Info("bidder blacklisted",
		"event", "guard_bidder_blacklisted",
		"module", "operations/system-guard",
		"layer", "application",
		"bidder_id", strings.TrimSpace(bidderID),
		"operator_id", strings.TrimSpace(operatorID),
	)
	return nil
}

// RateLimitStatus is the read-only throttle view for one actor.
func (s Service) RateLimitStatus(ctx context.Context, actorID string, t time.Time) (entities.RateLimitStatus, error) {
	if strings.TrimSpace(actorID) == "" {
		return entities.RateLimitStatus{}, domainerrors.ErrInvalidActorID
	}
	actorID = strings.TrimSpace(actorID)

	status := entities.RateLimitStatus{ActionsRemaining: s.MaxActions}
	record, found, err := s.Store.GetThrottle(ctx, actorID)
	if err != nil {
		return entities.RateLimitStatus{}, err
	}
	if s.MaxActions > 0 && found && t.Before(record.WindowStart.Add(s.RateLimitPeriod)) {
		remaining := s.MaxActions - record.Count
		if remaining < 0 {
			remaining = 0
		}
		status.ActionsRemaining = remaining
		status.WindowResetsAt = record.WindowStart.Add(s.RateLimitPeriod)
	}

	lastBidAt, found, err := s.Store.GetLastBidAt(ctx, actorID)
	if err != nil {
		return entities.RateLimitStatus{}, err
	}
	if s.BidCooldown > 0 && found {
		cooldownEnds := lastBidAt.Add(s.BidCooldown)
		if t.Before(cooldownEnds) {
			status.CooldownEndsAt = cooldownEnds
		}
	}
	return status, nil
}

func (s Service) appendEvent(ctx context.Context, eventType string, partitionKey string, occurredAt time.Time, data map[string]any) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    occurredAt,
		SourceService: "system-guard",
		SchemaVersion: 1,
		PartitionKey:  partitionKey,
		Data:          payload,
	})
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
