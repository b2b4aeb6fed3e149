// internal/handlers/conversation.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taqyim/valuation-backend/internal/i18n"
	"github.com/taqyim/valuation-backend/internal/services"
	"github.com/taqyim/valuation-backend/internal/utils"
)

type ConversationHandler struct {
	conversationService *services.ConversationService
}

func NewConversationHandler(conversationService *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
	}
}

// GET /conversations
func (h *ConversationHandler) List(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	conversations, err := h.conversationService.ListConversations(userID, role)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"conversations": conversations})
}

// GET /conversations/:id/messages?since=
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "since"), nil)
			return
		}
		since = &parsed
	}

	messages, err := h.conversationService.ListMessages(userID, role, conversationID, since)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"messages": messages})
}

// POST /conversations/:id/messages
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	req.ConversationID = conversationID

	message, err := h.conversationService.SendMessage(userID, role, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyMessageSent),
		"data":    message,
	})
}

// PUT /conversations/:id/status
func (h *ConversationHandler) UpdateStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	conversation, err := h.conversationService.UpdateStatus(userID, role, conversationID, req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"conversation": conversation})
}

// POST /conversations/start/:companyID
func (h *ConversationHandler) Start(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	companyID, ok := pathUUID(c, "companyID")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	conversation, err := h.conversationService.StartConversation(userID, role, companyID, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"conversation": conversation})
}
