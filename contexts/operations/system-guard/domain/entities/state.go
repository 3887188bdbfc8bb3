package entities

import "time"

// SystemState is the global operating mode of the engine.
type SystemState string

const (
	StateActive      SystemState = "active"
	StateMaintenance SystemState = "maintenance"
	StateEmergency   SystemState = "emergency"
)

// SystemStatus combines the mode with the independent pause flag. The two are
// checked separately: bidding requires state==active AND paused==false.
type SystemStatus struct {
	State  SystemState
	Paused bool
}

// ThrottleRecord is the per-actor fixed rate window. The window does not
// slide: the first action at or past WindowStart+period resets the window and
// counts as 1 against the new one.
type ThrottleRecord struct {
	WindowStart time.Time
	Count       int
}

// RateLimitStatus is the read-only throttle view exposed to callers.
type RateLimitStatus struct {
	ActionsRemaining int
	WindowResetsAt   time.Time
	CooldownEndsAt   time.Time
}
