package limits

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrDailyLimitExceeded indicates the debit would push the user's cumulative
// spend over the configured cap for the current window.
var ErrDailyLimitExceeded = errors.New("daily limit exceeded")

const window = 24 * time.Hour

type spendWindow struct {
	start time.Time
	spent int64
}

type windowKey struct {
	userID  string
	assetID string
}

// Guard tracks cumulative spend per user and asset inside a rolling 24-hour
// window. Absence of a configured limit means the check is skipped.
type Guard struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	limits  map[string]int64
	windows map[windowKey]spendWindow
}

// NewGuard builds a limit guard using the provided clock.
func NewGuard(clock clockwork.Clock) *Guard {
	return &Guard{
		clock:   clock,
		limits:  make(map[string]int64),
		windows: make(map[windowKey]spendWindow),
	}
}

// SetLimit configures the per-user cap. A limit of zero removes the cap.
func (g *Guard) SetLimit(userID string, limit int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if limit <= 0 {
		delete(g.limits, userID)
		return
	}
	g.limits[userID] = limit
}

// Limit returns the configured cap for the user, zero when unlimited.
func (g *Guard) Limit(userID string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limits[userID]
}

// Allow reports whether a debit of the given amount fits inside the current
// window. It mutates nothing; a rejected payment must leave the accumulator
// untouched.
func (g *Guard) Allow(userID, assetID string, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	limit, ok := g.limits[userID]
	if !ok {
		return nil
	}

	spent := g.effectiveSpent(userID, assetID)
	if spent+amount > limit || spent+amount < 0 {
		return ErrDailyLimitExceeded
	}
	return nil
}

// Commit records a successfully settled debit against the window. Callers
// invoke it only after the full payment path has succeeded, so failed
// attempts never consume limit.
func (g *Guard) Commit(userID, assetID string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.limits[userID]; !ok {
		return
	}

	now := g.clock.Now()
	key := windowKey{userID: userID, assetID: assetID}
	w, ok := g.windows[key]
	if !ok || now.Sub(w.start) >= window {
		w = spendWindow{start: now}
	}
	w.spent += amount
	g.windows[key] = w
}

// Spent returns the amount consumed in the user's current window.
func (g *Guard) Spent(userID, assetID string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.effectiveSpent(userID, assetID)
}

// effectiveSpent treats an expired window as already reset without writing
// the reset back; Commit performs the actual reset.
func (g *Guard) effectiveSpent(userID, assetID string) int64 {
	w, ok := g.windows[windowKey{userID: userID, assetID: assetID}]
	if !ok {
		return 0
	}
	if g.clock.Now().Sub(w.start) >= window {
		return 0
	}
	return w.spent
}
