package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cashswap-backend/internal/http/response"
	"github.com/yungbote/cashswap-backend/internal/services"
)

type ConversationHandler struct {
	convs    services.ConversationService
	messages services.MessageService
}

func NewConversationHandler(convs services.ConversationService, messages services.MessageService) *ConversationHandler {
	return &ConversationHandler{convs: convs, messages: messages}
}

// POST /api/conversations
//
// user1_email may be omitted; it then defaults to the caller.
func (h *ConversationHandler) GetOrCreate(c *gin.Context) {
	var req struct {
		User1Email string `json:"user1_email"`
		User2Email string `json:"user2_email"`
		RequestID  string `json:"request_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", errInvalidRequestID)
		return
	}
	conv, err := h.convs.GetOrCreate(c.Request.Context(), req.User1Email, req.User2Email, requestID)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversation": conv})
}

// GET /api/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	out, err := h.convs.Summaries(c.Request.Context())
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": out})
}

// GET /api/conversations/:id/messages
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	out, err := h.messages.List(c.Request.Context(), id)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": out})
}

// POST /api/conversations/:id/messages
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	var req struct {
		Sender  string `json:"sender"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), id, req.Sender, req.Content)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"message": msg})
}

// POST /api/conversations/:id/read
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	n, err := h.messages.MarkRead(c.Request.Context(), id)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"marked": n})
}

// GET /api/conversations/:id/unread
func (h *ConversationHandler) UnreadCount(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	n, err := h.messages.UnreadCount(c.Request.Context(), id)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"unread": n})
}

func conversationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", errInvalidConversationID)
		return uuid.Nil, false
	}
	return id, true
}
