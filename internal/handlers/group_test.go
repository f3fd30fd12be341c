package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/ws"
)

func setupGroupRouter(handler *GroupHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/groups", handler.CreateGroup)
	r.GET("/groups", handler.ListGroups)
	r.GET("/groups/:group_id", handler.GetGroup)
	r.GET("/groups/:group_id/members", handler.GetGroupMembers)
	r.POST("/groups/:group_id/members/:user_id", handler.AddMember)
	r.DELETE("/groups/:group_id/members/:user_id", handler.RemoveMember)
	r.DELETE("/groups/:group_id/leave", handler.LeaveGroup)
	r.PUT("/groups/:group_id/owner/:user_id", handler.PassOwnership)
	return r
}

func TestCreateGroupSeedsMemberships(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	hub := ws.NewHub()
	handler := NewGroupHandler(groupRepo, hub)
	router := setupGroupRouter(handler)

	groupRepo.On("CreateGroup", mock.Anything, 1, "team", []int{2, 3}).
		Return(models.Group{ID: 42, Name: "team", OwnerID: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewBufferString(`{"name":"team","members":[2,3]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.ElementsMatch(t, []int{1, 2, 3}, hub.Index.MembersOf(42))
	groupRepo.AssertExpectations(t)
}

func TestCreateGroupRepoError(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, ws.NewHub())
	router := setupGroupRouter(handler)

	groupRepo.On("CreateGroup", mock.Anything, 1, "team", ([]int)(nil)).
		Return(models.Group{}, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewBufferString(`{"name":"team"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestGetGroupForbiddenForNonMember(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, ws.NewHub())
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).Return(models.Group{ID: 42, OwnerID: 5}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 42, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestAddMemberOwnerOnly(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, ws.NewHub())
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).Return(models.Group{ID: 42, OwnerID: 9}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups/42/members/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddMemberUpdatesHub(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	hub := ws.NewHub()
	handler := NewGroupHandler(groupRepo, hub)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).Return(models.Group{ID: 42, OwnerID: 1}, nil).Once()
	groupRepo.On("AddMember", mock.Anything, 42, 3).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups/42/members/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, hub.Index.MembersOf(42), 3)
	groupRepo.AssertExpectations(t)
}

func TestRemoveMemberCannotRemoveSelf(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, ws.NewHub())
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).Return(models.Group{ID: 42, OwnerID: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/42/members/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveMemberUpdatesHub(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	hub := ws.NewHub()
	hub.OnJoin(3, 42)
	handler := NewGroupHandler(groupRepo, hub)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).Return(models.Group{ID: 42, OwnerID: 1}, nil).Once()
	groupRepo.On("RemoveMember", mock.Anything, 42, 3).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/42/members/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, hub.Index.MembersOf(42), 3)
	groupRepo.AssertExpectations(t)
}

func TestLeaveGroupOwnerForbidden(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, ws.NewHub())
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).Return(models.Group{ID: 42, OwnerID: 1}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 42, 1).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/42/leave", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestLeaveGroupUpdatesHub(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	hub := ws.NewHub()
	hub.OnJoin(1, 42)
	handler := NewGroupHandler(groupRepo, hub)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).Return(models.Group{ID: 42, OwnerID: 9}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 42, 1).Return(true, nil).Once()
	groupRepo.On("RemoveMember", mock.Anything, 42, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/42/leave", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, hub.Index.MembersOf(42), 1)
	groupRepo.AssertExpectations(t)
}

func TestPassOwnershipRequiresMembership(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, ws.NewHub())
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).Return(models.Group{ID: 42, OwnerID: 1}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 42, 7).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/groups/42/owner/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	groupRepo.AssertNotCalled(t, "PassOwnership", mock.Anything, mock.Anything, mock.Anything)
}
