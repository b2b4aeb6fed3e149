// internal/handlers/common.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taqyim/valuation-backend/internal/i18n"
	"github.com/taqyim/valuation-backend/internal/models"
	"github.com/taqyim/valuation-backend/internal/services"
	"github.com/taqyim/valuation-backend/internal/utils"
)

// currentUser pulls the authenticated principal out of the gin context. When
// it returns false a response has already been written.
func currentUser(c *gin.Context) (uuid.UUID, models.Role, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, "", false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, "", false
	}

	roleStr, _ := utils.GetUserRoleFromContext(c)
	role, err := models.ParseRole(roleStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, "", false
	}
	return userID, role, true
}

func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+param, nil)
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps service failure kinds onto HTTP responses. Guard
// failures come back as 400 with a warning code so clients can distinguish
// "wrong state" from malformed input; conflicts are retryable 409s.
func handleServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch services.KindOf(err) {
	case services.KindValidation:
		utils.BadRequestResponse(c, err.Error(), nil)
	case services.KindAuthorization:
		utils.ForbiddenResponse(c, err.Error())
	case services.KindGuard:
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_STATE", err.Error(), nil)
	case services.KindNotFound:
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case services.KindConflict:
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyValuationConflict))
	case services.KindStorage:
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "STORAGE_ERROR", "File storage is temporarily unavailable", nil)
	default:
		utils.InternalErrorResponse(c, "")
	}
}
