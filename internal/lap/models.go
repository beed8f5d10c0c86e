package lap

import "time"

// Record is one validated lap appended to the ledger. AgentID carries the
// connection id of the reporting agent; identity in the ledger otherwise
// follows the self-reported driver/computer names.
type Record struct {
	AgentID      string    `json:"agentId"`
	DriverName   string    `json:"driverName"`
	ComputerName string    `json:"computerName"`
	TrackName    string    `json:"trackName"`
	CarName      string    `json:"carName"`
	LapTime      float64   `json:"lapTime"`
	LapNumber    int       `json:"lapNumber"`
	IsValid      bool      `json:"isValid"`
	RecordedAt   time.Time `json:"timestamp"`
}

// Stats summarizes the ledger, recomputed on demand.
type Stats struct {
	TotalLaps int      `json:"totalLaps"`
	Drivers   []string `json:"drivers"`
	Tracks    []string `json:"tracks"`
}
