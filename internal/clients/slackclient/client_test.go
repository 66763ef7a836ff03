package slackclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresWebhook(t *testing.T) {
	_, err := NewClient("", "#staff-absence")
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestSend(t *testing.T) {
	var received webhookMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "#staff-absence")
	require.NoError(t, err)

	err = client.Send(context.Background(), service.NewOutboundMessage(service.ChannelAdmin, "", "【緊急】田中 美咲さん欠勤報告"))
	require.NoError(t, err)

	assert.Equal(t, "#staff-absence", received.Channel)
	assert.Equal(t, "staff-absence", received.Username)
	assert.Equal(t, "【緊急】田中 美咲さん欠勤報告", received.Text)
}

func TestSendErrors(t *testing.T) {
	testCases := []struct {
		name      string
		status    int
		body      string
		permanent bool
	}{
		{"invalid payload", http.StatusBadRequest, "invalid_payload", true},
		{"channel removed", http.StatusNotFound, "channel_not_found", true},
		{"rate limited", http.StatusTooManyRequests, "rate_limited", false},
		{"server error", http.StatusInternalServerError, "internal_error", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client, err := NewClient(srv.URL, "")
			require.NoError(t, err)

			err = client.Post(context.Background(), "hello")

			require.Error(t, err)
			assert.Equal(t, tc.permanent, apperrors.IsPermanentDelivery(err))
			assert.Contains(t, err.Error(), tc.body)
		})
	}
}

func TestSendConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(url, "")
	require.NoError(t, err)

	err = client.Post(context.Background(), "hello")
	require.Error(t, err)
	assert.False(t, apperrors.IsPermanentDelivery(err))
}
