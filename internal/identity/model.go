package identity

import "time"

// User represents a registered remittance sender or receiver. Balances live
// in the ledger under the user's account code; the profile fields here are
// opaque registration metadata.
type User struct {
	ID            string
	Name          string
	Country       string
	Phone         string
	PINHash       []byte
	Active        bool
	TotalSent     int64
	TotalReceived int64
	CreatedAt     time.Time
}

// AccountCode returns the ledger account code holding the user's balances.
func (u User) AccountCode() string {
	return "user:" + u.ID
}

// Registration carries the data supplied at sign-up.
type Registration struct {
	Name    string
	Country string
	Phone   string
	PIN     string
}
