package session

import "time"

// Session is the registry's live record for one connected agent.
type Session struct {
	ID           string    `json:"id"`
	DriverName   string    `json:"driverName"`
	ComputerName string    `json:"computerName"`
	ConnectedAt  time.Time `json:"connectedAt"`
	LastUpdateAt time.Time `json:"lastUpdate"`
}

// Registration carries the self-reported identity from a register-agent
// message. Either field may be empty; the registry fills in "Unknown".
type Registration struct {
	DriverName   string `json:"driverName"`
	ComputerName string `json:"computerName"`
}
