// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers messages through an SMTP relay with gomail.
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	renderer *Renderer
}

// NewSMTPSender builds a sender for the given relay.
func NewSMTPSender(config SMTPConfig, renderer *Renderer) *SMTPSender {
	return &SMTPSender{
		dialer:   gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		from:     config.From,
		renderer: renderer,
	}
}

/*
Send renders and delivers message.

Description: gomail has no context support, so the dial runs in its own
goroutine and Send returns as soon as context is done. The dial itself is
bounded by gomail's connect timeout.
*/
func (sender *SMTPSender) Send(context context.Context, message Message) error {
	rendered, err := sender.renderer.Render(message)
	if err != nil {
		return err
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", sender.from)
	mail.SetHeader("To", message.Recipient)
	mail.SetHeader("Subject", rendered.Subject)
	mail.SetBody("text/html", rendered.HTML)

	result := make(chan error, 1)
	go func() {
		result <- sender.dialer.DialAndSend(mail)
	}()

	select {
	case err := <-result:
		if err != nil {
			return fmt.Errorf("notify: smtp delivery of %s failed: %w", message.Template, err)
		}
		return nil
	case <-context.Done():
		return fmt.Errorf("notify: smtp delivery of %s abandoned: %w", message.Template, context.Err())
	}
}
