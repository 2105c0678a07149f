package types

import "time"

// PeerMeta is the display metadata a peer presents during pairing.
type PeerMeta struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon,omitempty"`
}

// Connection identifies one paired external application. The session registry
// is the single source of truth for these records; only connections are ever
// persisted, never in-flight requests.
type Connection struct {
	ID          string       `json:"id"`
	Peer        PeerMeta     `json:"peer"`
	ChainID     ChainID      `json:"chain_id"`
	Permissions []Permission `json:"permissions"`
	// Addresses the holder authorized this peer to see and request
	// signatures from.
	Addresses  []string  `json:"addresses"`
	Connected  bool      `json:"connected"`
	LastActive time.Time `json:"last_active"`
}

// Authorized reports whether the connection may request signatures from addr.
func (c *Connection) Authorized(addr string) bool {
	for _, a := range c.Addresses {
		if a == addr {
			return true
		}
	}
	return false
}

func (c *Connection) HasPermission(p Permission) bool {
	for _, granted := range c.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// SessionRequest is a pairing/permission request awaiting holder approval.
// Pairing decisions are out of band from signing decisions and live on their
// own queue. Destroyed on approve or reject.
type SessionRequest struct {
	ID           string
	ConnectionID string
	Peer         PeerMeta
	ChainID      ChainID
	Permissions  []Permission
	Raised       time.Time
}

// RequestID implements queue.Item.
func (r *SessionRequest) RequestID() string {
	return r.ID
}
