package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// MessageHandler serves direct and group message history.
type MessageHandler struct {
	directRepo repositories.DirectMessageRepository
	groupMsgs  repositories.GroupMessageRepository
	groupRepo  repositories.GroupRepository
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(directRepo repositories.DirectMessageRepository, groupMsgs repositories.GroupMessageRepository, groupRepo repositories.GroupRepository) *MessageHandler {
	return &MessageHandler{directRepo: directRepo, groupMsgs: groupMsgs, groupRepo: groupRepo}
}

// GetDirectHistory returns both sides of the conversation with a peer and
// marks the peer's messages to the caller as read.
func (h *MessageHandler) GetDirectHistory(c *gin.Context) {
	peerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("userID")
	msgs, err := h.directRepo.History(c.Request.Context(), userID, peerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.DirectMessage{}
	}

	if err := h.directRepo.MarkConversationRead(c.Request.Context(), userID, peerID); err != nil {
		log.Printf("mark conversation read: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// GetGroupHistory returns the group's messages; members only.
func (h *MessageHandler) GetGroupHistory(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group chat"})
		return
	}

	msgs, err := h.groupMsgs.History(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.GroupMessage{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
