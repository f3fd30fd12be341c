package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/auth"
	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
)

// SessionHandler owns the messaging websocket endpoint: it authenticates
// the connection, seeds the membership index from storage, registers the
// handle and drives the per-connection read loop.
type SessionHandler struct {
	hub        *Hub
	verifier   auth.TokenVerifier
	groupRepo  repositories.GroupRepository
	directRepo repositories.DirectMessageRepository
	groupMsgs  repositories.GroupMessageRepository
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(hub *Hub, verifier auth.TokenVerifier, groupRepo repositories.GroupRepository, directRepo repositories.DirectMessageRepository, groupMsgs repositories.GroupMessageRepository) *SessionHandler {
	return &SessionHandler{
		hub:        hub,
		verifier:   verifier,
		groupRepo:  groupRepo,
		directRepo: directRepo,
		groupMsgs:  groupMsgs,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the user with the hub.
func (h *SessionHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	// a user may belong to groups without ever having connected before
	groupIDs, err := h.groupRepo.GroupIDsForUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load group memberships"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}

	handle := NewWSHandle(conn)
	h.hub.Index.SeedUser(userID, groupIDs)
	if prior := h.hub.Registry.Register(userID, handle); prior != nil {
		// second connection wins; the displaced transport is closed so it
		// cannot leak
		_ = prior.Close()
	}

	observability.IncWSActive("session")
	observability.IncWSEvent("session", "ws_connect")
	h.publishSessionEvent(ctx, "ws_connect", info, 0, "")

	go h.readLoop(ctx, userID, conn, handle, info)
}

func (h *SessionHandler) readLoop(ctx context.Context, userID int, conn *websocket.Conn, handle Handle, info ConnInfo) {
	var closeReason string
	defer func() {
		h.hub.Registry.UnregisterHandle(userID, handle)
		observability.DecWSActive("session")
		observability.IncWSEvent("session", "ws_disconnect")
		h.publishSessionEvent(ctx, "ws_disconnect", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason)
		conn.Close()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("session", "ws_error")
				h.publishSessionEvent(ctx, "ws_error", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason)
			}
			return
		}
		h.dispatch(ctx, userID, handle, data)
	}
}

// dispatch handles one inbound frame: persist first, then route the
// canonical stored record. A rejected frame is answered inline and the
// connection stays open.
func (h *SessionHandler) dispatch(ctx context.Context, userID int, handle Handle, data []byte) {
	var frame models.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		h.reject(handle, "malformed frame")
		return
	}

	switch frame.Type {
	case models.FrameTypeDirect:
		if frame.ReceiverID == 0 {
			h.reject(handle, "receiver_id is required")
			return
		}
		msg, err := h.directRepo.Create(ctx, userID, frame.ReceiverID, frame.Message)
		if err != nil {
			h.reject(handle, "could not store message")
			return
		}
		h.hub.Router.RouteDirect(userID, frame.ReceiverID, models.DirectEvent{Type: "message", Message: &msg})
	case models.FrameTypeGroup:
		if frame.GroupID == 0 {
			h.reject(handle, "group_id is required")
			return
		}
		msg, err := h.groupMsgs.Create(ctx, frame.GroupID, userID, frame.Message, frame.ParentID)
		if err != nil {
			h.reject(handle, "could not store message")
			return
		}
		h.hub.Router.RouteGroup(userID, frame.GroupID, models.GroupEvent{Type: "message", Message: &msg}, true)
	default:
		h.reject(handle, "unknown frame type")
	}
}

func (h *SessionHandler) reject(handle Handle, reason string) {
	observability.IncWSEvent("session", "frame_rejected")
	payload, err := json.Marshal(models.ErrorEvent{Type: "error", Error: reason})
	if err != nil {
		return
	}
	_ = handle.Send(payload)
}

func (h *SessionHandler) validateToken(ctx context.Context, header string) (int, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return h.verifier.Verify(ctx, parts[1])
	}
	return 0, auth.ErrInvalidToken
}

func (h *SessionHandler) publishSessionEvent(ctx context.Context, event string, info ConnInfo, durationMS int64, reason string) {
	_ = observability.PublishEvent(ctx, "ws_events.sessions", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"kind":        "session",
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": durationMS,
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
