package inbound_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"orders/internal/core/application/inbound"
	"orders/internal/core/integration"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationHandlers(t *testing.T) {
	var buf bytes.Buffer
	handlers := inbound.NewNotificationHandlers(slog.New(slog.NewJSONHandler(&buf, nil)))
	orderID := uuid.New()

	t.Run("shipped without tracking number logs N/A", func(t *testing.T) {
		buf.Reset()

		err := handlers.OrderShipped(t.Context(), integration.NewOrderShipped(orderID, time.Now(), "", time.Now()))

		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"tracking_number":"N/A"`)
		assert.Contains(t, buf.String(), orderID.String())
	})

	t.Run("cancelled logs the reason", func(t *testing.T) {
		buf.Reset()

		err := handlers.OrderCancelled(t.Context(), integration.NewOrderCancelled(orderID, time.Now(), "late", time.Now()))

		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"reason":"late"`)
		assert.Contains(t, buf.String(), `"component":"notifications"`)
	})

	t.Run("registering twice fails", func(t *testing.T) {
		registry := inbound.NewRegistry()
		require.NoError(t, handlers.RegisterAll(registry))

		require.ErrorIs(t, handlers.RegisterAll(registry), inbound.ErrHandlerAlreadyRegistered)
	})
}
