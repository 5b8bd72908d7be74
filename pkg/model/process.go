package model

// Process describes the process whose descriptors are being observed
type Process struct {
	PID     int    `json:"pid"`
	Command string `json:"command"`
	Cmdline string `json:"cmdline"`
	User    string `json:"user"`
}

// ProcessSummary holds basic information about a process for name lookups
type ProcessSummary struct {
	PID     int
	Command string
	Cmdline string
}
