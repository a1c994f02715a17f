// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify delivers account emails.

A [Message] names a template, a recipient and the values the template needs.
A [Sender] turns it into a delivered email. The [Dispatcher] wraps a Sender
with the two delivery modes the workflows use: synchronous with a bounded
timeout, and fire-and-forget in the background.

# Templates

  - verification_email: Name, VerificationURL
  - login_notification: Name, LoginTime, IPAddress, UserAgent
  - password_reset: Name, ResetURL, ExpiresIn
  - password_reset_confirmation: Name, ChangedAt

SiteName is injected by the renderer. Missing keys fail rendering.
*/
package notify

import "context"

// Template identifies an embedded email template.
type Template string

const (
	TemplateVerification      Template = "verification_email"
	TemplateLoginNotification Template = "login_notification"
	TemplatePasswordReset     Template = "password_reset"
	TemplateResetConfirmation Template = "password_reset_confirmation"
)

// Message is one email to deliver.
type Message struct {
	Template  Template
	Recipient string
	Payload   map[string]any
}

// Sender delivers a [Message]. Implementations must honour context
// cancellation at least at the point of dialing.
type Sender interface {
	Send(context context.Context, message Message) error
}

// SenderFunc adapts a function to [Sender].
type SenderFunc func(context context.Context, message Message) error

// Send calls fn.
func (fn SenderFunc) Send(context context.Context, message Message) error {
	return fn(context, message)
}
