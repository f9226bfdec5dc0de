package model

import "time"

// Dispatch statuses recorded in the send log.
const (
	DispatchSent   = "sent"
	DispatchFailed = "failed"
)

// Dispatch is one entry in the local send log: a single attempt to
// deliver a composed message through an SMTP host.
type Dispatch struct {
	ID         string
	Subject    string
	FromAddr   string
	Recipients []string
	Host       string
	Status     string
	Detail     string
	SentAt     time.Time
}
