package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
)

func TestAuditEmitterPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.messaging", "messaging-service", "test")

	var captured AuditEnvelope
	publisher.On("Publish", mock.Anything, "audit.messaging", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(AuditEnvelope)
		if ok {
			captured = envelope
		}
		return ok
	})).Return(nil).Once()

	userID := int64(42)
	emitter.Emit(context.Background(), "INFO", "member added", "req-1", &userID)

	publisher.AssertExpectations(t)
	require.Equal(t, "audit_log", captured.EventType)
	require.Equal(t, "messaging-service", captured.Service)
	require.Equal(t, "req-1", captured.RequestID)
	require.NotNil(t, captured.UserID)
	require.Equal(t, "42", *captured.UserID)
	require.Equal(t, "member added", captured.Payload.Text)
}

func TestAuditEmitterNilReceiverIsSafe(t *testing.T) {
	var emitter *AuditEmitter
	emitter.Emit(context.Background(), "INFO", "ignored", "req-2", nil)
}
