// Package send dispatches composed messages over SMTP.
package send

import (
	"context"

	"github.com/nhle/mailkit/internal/message"
	"github.com/nhle/mailkit/internal/model"
)

// Sender is the interface that delivery backends implement. It
// receives exactly one fully validated credential record per call;
// resolution and validation happen before a Sender is ever invoked.
type Sender interface {
	// Send delivers a composed message through the transport
	// described by creds. It returns an error if delivery fails.
	Send(ctx context.Context, msg *message.Message, creds model.CredentialRecord) error
}
