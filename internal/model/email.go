package model

import "time"

// EmailMessage is a single inbound notification email as delivered by the
// ingestion layer. It is immutable; the parser never mutates it.
type EmailMessage struct {
	ReceivedAt  time.Time
	ID          string
	FromAddress string
	Subject     string
	Body        string
}
