// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"context"
	"log/slog"
)

// LogSender renders messages and logs them instead of sending. It is the
// development fallback when no SMTP relay is configured.
type LogSender struct {
	renderer *Renderer
	logger   *slog.Logger
}

// NewLogSender wires a [LogSender].
func NewLogSender(renderer *Renderer, logger *slog.Logger) *LogSender {
	return &LogSender{renderer: renderer, logger: logger}
}

// Send renders message and logs its envelope. The body is logged only at
// debug level since it carries the token link.
func (sender *LogSender) Send(context context.Context, message Message) error {
	rendered, err := sender.renderer.Render(message)
	if err != nil {
		return err
	}

	sender.logger.InfoContext(context, "notification_logged",
		slog.String("template", string(message.Template)),
		slog.String("recipient", message.Recipient),
		slog.String("subject", rendered.Subject),
	)
	sender.logger.DebugContext(context, "notification_body",
		slog.String("template", string(message.Template)),
		slog.String("html", rendered.HTML),
	)

	return nil
}
