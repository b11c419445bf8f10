// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package guard gates outbound provider calls on recent, explicit user
// actions. A token proves a network call was triggered by a user gesture; it
// is a defensive control against background network use, not a security
// boundary.
// Implements: prd003-network-guard (R1-R3).
package guard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mealworks/lookup-engine/pkg/types"
)

// ErrStaleToken is returned when a token is outside the validity window,
// including tokens issued in the future (clock skew).
var ErrStaleToken = errors.New("stale action token")

// DefaultValidity is the production token freshness window.
const DefaultValidity = 60 * time.Second

// Guard issues and validates action tokens against an injectable clock.
// The clock is the guard's only shared state and is read-only during
// validation.
type Guard struct {
	validity time.Duration
	now      func() time.Time
}

// New returns a Guard with the given validity window. A non-positive window
// falls back to DefaultValidity.
func New(validity time.Duration) *Guard {
	return NewWithClock(validity, time.Now)
}

// NewWithClock returns a Guard using the given clock. Tests use this to pin
// time.
func NewWithClock(validity time.Duration, now func() time.Time) *Guard {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Guard{validity: validity, now: now}
}

// Issue creates a token for the named user action, stamped with the current
// time and a unique nonce.
func (g *Guard) Issue(action string) types.ActionToken {
	return types.ActionToken{
		Action:   action,
		ID:       uuid.NewString(),
		IssuedAt: g.now(),
	}
}

// Validate checks token freshness at call time. A token ages out when its
// age strictly exceeds the validity window; age exactly equal to the window
// still passes. A negative age means clock skew and fails.
func (g *Guard) Validate(tok types.ActionToken) error {
	age := g.now().Sub(tok.IssuedAt)
	if age < 0 {
		return fmt.Errorf("%w: token issued %s in the future", ErrStaleToken, -age)
	}
	if age > g.validity {
		return fmt.Errorf("%w: token age %s exceeds %s window (action %q)", ErrStaleToken, age, g.validity, tok.Action)
	}
	return nil
}
