// Package mailer is the boundary to the mail transport. The transport
// decides nothing: it receives a fully rendered (to, subject, body) triple
// and reports whether the attempt was delivered to the gateway.
package mailer

import "context"

// Mailer places one message on the wire. Send never returns an error:
// any failure is reported as delivered=false and handled locally by the
// dispatch engine (logged, never escalated, never retried individually).
type Mailer interface {
	Send(ctx context.Context, to, locale, subject, bodyHTML string) bool
}
