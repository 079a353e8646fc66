package nego

import "sync"

// SettingsValues is a plain snapshot of the runtime-mutable policy knobs.
type SettingsValues struct {
	// AcceptThresholdPct auto-accepts offers at or above this percentage of
	// the seller price. 0 disables auto-accept.
	AcceptThresholdPct int64
	// RejectThresholdPct auto-rejects offers below this percentage of the
	// seller price. 0 disables auto-reject.
	RejectThresholdPct int64
	// DelayActions inserts randomized pacing delays before automated
	// actions.
	DelayActions bool
	// Unattended auto-completes a manually triggered negotiation using a
	// recently cached matching offer.
	Unattended bool
	// ConsoleLog raises deal narration from debug to info level.
	ConsoleLog bool
}

// Settings holds the live policy. The negotiator reads it on its event loop
// while the command surface mutates it from the host's thread, so access
// goes through a lock.
type Settings struct {
	mu sync.RWMutex
	v  SettingsValues
}

// NewSettings creates a Settings with the given initial values.
func NewSettings(v SettingsValues) *Settings {
	return &Settings{v: v}
}

// Snapshot returns a copy of the current values.
func (s *Settings) Snapshot() SettingsValues {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

// Update applies fn to the values under the lock and returns the result.
func (s *Settings) Update(fn func(*SettingsValues)) SettingsValues {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.v)
	return s.v
}
