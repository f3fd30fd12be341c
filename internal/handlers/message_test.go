package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/messages/history/dm/:user_id", handler.GetDirectHistory)
	r.GET("/messages/history/group/:group_id", handler.GetGroupHistory)
	return r
}

func TestGetDirectHistoryMarksRead(t *testing.T) {
	directRepo := new(mocks.DirectMessageRepositoryMock)
	handler := NewMessageHandler(directRepo, new(mocks.GroupMessageRepositoryMock), new(mocks.GroupRepositoryMock))
	router := setupMessageRouter(handler)

	directRepo.On("History", mock.Anything, 1, 2).
		Return([]models.DirectMessage{{ID: 5, SenderID: 2, RecipientID: 1, Content: "hey"}}, nil).Once()
	directRepo.On("MarkConversationRead", mock.Anything, 1, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/history/dm/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.DirectMessage `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 1)
	require.Equal(t, "hey", resp.Messages[0].Content)
	directRepo.AssertExpectations(t)
}

func TestGetDirectHistoryRepoError(t *testing.T) {
	directRepo := new(mocks.DirectMessageRepositoryMock)
	handler := NewMessageHandler(directRepo, new(mocks.GroupMessageRepositoryMock), new(mocks.GroupRepositoryMock))
	router := setupMessageRouter(handler)

	directRepo.On("History", mock.Anything, 1, 2).Return(([]models.DirectMessage)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/history/dm/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	directRepo.AssertExpectations(t)
}

func TestGetGroupHistoryMembersOnly(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	groupMsgs := new(mocks.GroupMessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.DirectMessageRepositoryMock), groupMsgs, groupRepo)
	router := setupMessageRouter(handler)

	groupRepo.On("IsMember", mock.Anything, 42, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/history/group/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupMsgs.AssertNotCalled(t, "History", mock.Anything, mock.Anything)
}

func TestGetGroupHistorySuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	groupMsgs := new(mocks.GroupMessageRepositoryMock)
	handler := NewMessageHandler(new(mocks.DirectMessageRepositoryMock), groupMsgs, groupRepo)
	router := setupMessageRouter(handler)

	groupRepo.On("IsMember", mock.Anything, 42, 1).Return(true, nil).Once()
	groupMsgs.On("History", mock.Anything, 42).
		Return([]models.GroupMessage{{ID: 3, GroupChatID: 42, SenderID: 2, Content: "hi"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/history/group/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.GroupMessage `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 1)
	groupRepo.AssertExpectations(t)
	groupMsgs.AssertExpectations(t)
}
