// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-accounts/internal/notify"
)

func TestLogSender_LogsEnvelopeNotBody(t *testing.T) {
	renderer, err := notify.NewRenderer("Site")
	require.NoError(t, err)

	var buffer bytes.Buffer
	sender := notify.NewLogSender(renderer, slog.New(slog.NewJSONHandler(&buffer, nil)))

	err = sender.Send(context.Background(), notify.Message{
		Template:  notify.TemplateVerification,
		Recipient: "alice@example.com",
		Payload:   map[string]any{"Name": "Alice", "VerificationURL": "https://x.test/secret-token"},
	})
	require.NoError(t, err)

	assert.Contains(t, buffer.String(), "notification_logged")
	assert.Contains(t, buffer.String(), "alice@example.com")
	assert.NotContains(t, buffer.String(), "secret-token")
}
