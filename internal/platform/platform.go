package platform

import (
	"errors"
	"sync"
)

var (
	// ErrUnauthorized indicates the acting identity is not the configured admin.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPaused indicates the platform pause switch is engaged.
	ErrPaused = errors.New("platform paused")

	// ErrInvalidFee indicates a fee rate outside the allowed basis-point range.
	ErrInvalidFee = errors.New("invalid fee rate")

	// ErrInvalidTreasury indicates an empty treasury account code.
	ErrInvalidTreasury = errors.New("invalid treasury account")
)

const (
	// DefaultFeeBps is the platform fee applied when none is configured (0.5%).
	DefaultFeeBps = 50

	// MaxFeeBps is the hard ceiling for the fee rate (100%).
	MaxFeeBps = 10_000
)

// Platform holds the process-wide mutable configuration: fee rate, treasury
// account, pause switch and the admin identity allowed to mutate any of them.
type Platform struct {
	mu       sync.RWMutex
	adminID  string
	treasury string
	feeBps   int64
	paused   bool
}

// Snapshot is a consistent read of the configuration taken once per operation.
type Snapshot struct {
	FeeBps   int64
	Treasury string
	Paused   bool
}

// New builds the configuration record. The treasury account and admin identity
// are fixed at construction until changed through the admin operations.
func New(adminID, treasury string, feeBps int64) (*Platform, error) {
	if feeBps < 0 || feeBps > MaxFeeBps {
		return nil, ErrInvalidFee
	}
	if treasury == "" {
		return nil, ErrInvalidTreasury
	}
	return &Platform{adminID: adminID, treasury: treasury, feeBps: feeBps}, nil
}

// Snapshot returns the current configuration as a single consistent value.
func (p *Platform) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{FeeBps: p.feeBps, Treasury: p.treasury, Paused: p.paused}
}

// Authorize verifies the actor against the configured admin identity.
func (p *Platform) Authorize(actor string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if actor == "" || actor != p.adminID {
		return ErrUnauthorized
	}
	return nil
}

// SetFee updates the platform fee rate in basis points. Takes effect for
// subsequent payments only.
func (p *Platform) SetFee(actor string, bps int64) error {
	if err := p.Authorize(actor); err != nil {
		return err
	}
	if bps < 0 || bps > MaxFeeBps {
		return ErrInvalidFee
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.feeBps = bps
	return nil
}

// SetTreasury changes the account that accumulates collected fees.
func (p *Platform) SetTreasury(actor, treasury string) error {
	if err := p.Authorize(actor); err != nil {
		return err
	}
	if treasury == "" {
		return ErrInvalidTreasury
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.treasury = treasury
	return nil
}

// Pause engages the global pause switch. Balance-mutating operations fail
// with ErrPaused until Unpause.
func (p *Platform) Pause(actor string) error {
	if err := p.Authorize(actor); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	return nil
}

// Unpause releases the pause switch without altering any balance.
func (p *Platform) Unpause(actor string) error {
	if err := p.Authorize(actor); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	return nil
}
