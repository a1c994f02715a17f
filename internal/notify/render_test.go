// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-accounts/internal/notify"
)

func TestRenderer_AllTemplates(t *testing.T) {
	renderer, err := notify.NewRenderer("Tom's Site")
	require.NoError(t, err)

	tests := []struct {
		template notify.Template
		payload  map[string]any
		contains string
	}{
		{notify.TemplateVerification, map[string]any{"Name": "Alice", "VerificationURL": "https://x.test/verify-email/abc"}, "https://x.test/verify-email/abc"},
		{notify.TemplateLoginNotification, map[string]any{"Name": "Alice", "LoginTime": "now", "IPAddress": "203.0.113.9", "UserAgent": "Unknown"}, "203.0.113.9"},
		{notify.TemplatePasswordReset, map[string]any{"Name": "Alice", "ResetURL": "https://x.test/reset/abc", "ExpiresIn": "24h0m0s"}, "https://x.test/reset/abc"},
		{notify.TemplateResetConfirmation, map[string]any{"Name": "Alice", "ChangedAt": "today"}, "today"},
	}

	for _, tt := range tests {
		t.Run(string(tt.template), func(t *testing.T) {
			rendered, err := renderer.Render(notify.Message{Template: tt.template, Recipient: "a@example.com", Payload: tt.payload})
			require.NoError(t, err)
			assert.Contains(t, rendered.Subject, "Tom's Site", "subject is not HTML escaped")
			assert.Contains(t, rendered.HTML, tt.contains)
			assert.Contains(t, rendered.HTML, "Alice")
		})
	}
}

func TestRenderer_EscapesPayload(t *testing.T) {
	renderer, err := notify.NewRenderer("Site")
	require.NoError(t, err)

	rendered, err := renderer.Render(notify.Message{
		Template: notify.TemplateLoginNotification,
		Payload:  map[string]any{"Name": "<script>", "LoginTime": "t", "IPAddress": "ip", "UserAgent": "ua"},
	})
	require.NoError(t, err)
	assert.NotContains(t, rendered.HTML, "<script>")
}

func TestRenderer_MissingKeyFails(t *testing.T) {
	renderer, err := notify.NewRenderer("Site")
	require.NoError(t, err)

	_, err = renderer.Render(notify.Message{Template: notify.TemplateVerification, Payload: map[string]any{"Name": "Alice"}})
	assert.Error(t, err)
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	renderer, err := notify.NewRenderer("Site")
	require.NoError(t, err)

	_, err = renderer.Render(notify.Message{Template: "nope"})
	assert.ErrorContains(t, err, "unknown template")
}
