// Package auditworker consumes appointment-completion messages, consumes
// prior-authorization units, and runs the full-catalog safety sweep for the
// affected patient.
package auditworker

import "context"

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}
