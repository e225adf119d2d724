package models

import "time"

// User is the identity behind a query service connection
type User struct {
	// From JWT claims; empty for anonymous connections
	ID          string `json:"id"`          // Converted from int64 user_id
	Username    string `json:"username"`    // JWT claim
	Email       string `json:"email"`       // JWT claim
	Permissions int64  `json:"permissions"` // JWT claim: bitwise permission flags
	Activated   int64  `json:"activated"`   // JWT claim: activation timestamp or ban status
	AuthMethod  string `json:"auth_method"` // JWT claim: "password" or "oauth"

	// Connection state
	ConnectionID string    `json:"connection_id"`
	Connected    bool      `json:"connected"`
	ConnectedAt  time.Time `json:"connected_at"`
	SessionID    string    `json:"session_id"`
}

// Anonymous returns the identity used when authentication is disabled
func Anonymous() *User {
	return &User{Username: "anonymous", Activated: 1}
}

// IsAnonymous reports whether the user did not present a token
func (u *User) IsAnonymous() bool {
	return u.ID == ""
}

// IsActive checks if the account is activated and not banned
func (u *User) IsActive() bool {
	// activated > 0 means activated
	// activated == 0 means not activated
	// activated == -1 means banned
	return u.Activated > 0
}

// IsBanned checks if the account is banned
func (u *User) IsBanned() bool {
	return u.Activated == -1
}

// DisplayName returns the username, falling back to the connection id
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.ConnectionID
}
