package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
	"messaging-service/internal/ws"
)

// GroupHandler manages group chats and their membership. Every membership
// change is mirrored into the hub's index so routing sees it immediately.
type GroupHandler struct {
	groupRepo repositories.GroupRepository
	hub       *ws.Hub
}

// NewGroupHandler builds a GroupHandler.
func NewGroupHandler(groupRepo repositories.GroupRepository, hub *ws.Hub) *GroupHandler {
	return &GroupHandler{groupRepo: groupRepo, hub: hub}
}

// CreateGroup creates a group with the caller as owner. The caller is
// always a member, whether or not listed in the request.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Members []int  `json:"members"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	group, err := h.groupRepo.CreateGroup(c.Request.Context(), userID, req.Name, req.Members)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		return
	}

	h.hub.OnJoin(userID, group.ID)
	for _, memberID := range req.Members {
		h.hub.OnJoin(memberID, group.ID)
	}

	c.JSON(http.StatusOK, group)
}

// ListGroups returns the caller's groups.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID := c.GetInt("userID")

	groups, err := h.groupRepo.ListGroupsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load groups"})
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetGroup returns a single group; members only.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	group, err := h.fetchGroupForMember(c, groupID, userID)
	if err != nil {
		return
	}

	c.JSON(http.StatusOK, group)
}

// GetGroupMembers returns the member ids of a group; members only.
func (h *GroupHandler) GetGroupMembers(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	if _, err := h.fetchGroupForMember(c, groupID, userID); err != nil {
		return
	}

	memberIDs, err := h.groupRepo.MemberIDs(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": memberIDs})
}

// AddMember adds a user to the group; owner only.
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, memberID, ok := groupAndUserParams(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	group, err := h.fetchGroup(c, groupID)
	if err != nil {
		return
	}
	if group.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can add members"})
		return
	}

	if err := h.groupRepo.AddMember(c.Request.Context(), groupID, memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add member"})
		return
	}

	h.hub.OnJoin(memberID, groupID)
	c.JSON(http.StatusOK, gin.H{"group_id": groupID, "user_id": memberID})
}

// RemoveMember removes a user from the group; owner only, and the owner
// cannot remove themselves.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, memberID, ok := groupAndUserParams(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	group, err := h.fetchGroup(c, groupID)
	if err != nil {
		return
	}
	if group.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can remove members"})
		return
	}
	if memberID == userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot remove yourself from the group"})
		return
	}

	if err := h.groupRepo.RemoveMember(c.Request.Context(), groupID, memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove member"})
		return
	}

	h.hub.OnLeave(memberID, groupID)
	c.JSON(http.StatusOK, gin.H{"group_id": groupID, "user_id": memberID})
}

// LeaveGroup removes the caller from the group. The owner cannot leave a
// group they own.
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt("userID")
	group, err := h.fetchGroupForMember(c, groupID, userID)
	if err != nil {
		return
	}
	if group.OwnerID == userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot leave the group you own"})
		return
	}

	if err := h.groupRepo.RemoveMember(c.Request.Context(), groupID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave group"})
		return
	}

	h.hub.OnLeave(userID, groupID)
	c.JSON(http.StatusOK, gin.H{"group_id": groupID})
}

// PassOwnership transfers group ownership to another member; owner only.
func (h *GroupHandler) PassOwnership(c *gin.Context) {
	groupID, newOwnerID, ok := groupAndUserParams(c)
	if !ok {
		return
	}

	userID := c.GetInt("userID")
	group, err := h.fetchGroup(c, groupID)
	if err != nil {
		return
	}
	if group.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can pass ownership"})
		return
	}

	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, newOwnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return
	}
	if !member {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new owner must be a member of the group"})
		return
	}

	if err := h.groupRepo.PassOwnership(c.Request.Context(), groupID, newOwnerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not pass ownership"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group_id": groupID, "owner_id": newOwnerID})
}

func (h *GroupHandler) fetchGroup(c *gin.Context, groupID int) (models.Group, error) {
	group, err := h.groupRepo.GetGroup(c.Request.Context(), groupID)
	if errors.Is(err, repositories.ErrGroupNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return models.Group{}, err
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load group"})
		return models.Group{}, err
	}
	return group, nil
}

func (h *GroupHandler) fetchGroupForMember(c *gin.Context, groupID, userID int) (models.Group, error) {
	group, err := h.fetchGroup(c, groupID)
	if err != nil {
		return models.Group{}, err
	}

	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return models.Group{}, err
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this group"})
		return models.Group{}, errors.New("not a member")
	}
	return group, nil
}

func groupAndUserParams(c *gin.Context) (int, int, bool) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return 0, 0, false
	}
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, 0, false
	}
	return groupID, userID, true
}
