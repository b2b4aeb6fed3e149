// internal/services/conversation_service.go
package services

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/models"
)

const maxMessageLength = 3000

// Sharing outside contact channels is blocked inside the platform; these are
// deliberately crude patterns for emails, URLs, phone numbers and WhatsApp.
var (
	emailPattern    = regexp.MustCompile(`[a-z0-9_.+-]+@[a-z0-9-]+\.[a-z0-9-.]+`)
	urlPattern      = regexp.MustCompile(`https?://|www\.`)
	phonePattern    = regexp.MustCompile(`(\+?\d[\d\s\-]{6,}\d)`)
	whatsappPattern = regexp.MustCompile(`whats(app)?|wa\.me|chat\.whatsapp\.com`)
	smsPattern      = regexp.MustCompile(`\bsms\b`)
)

func detectExternalContact(content string) bool {
	text := strings.ToLower(content)
	return emailPattern.MatchString(text) ||
		urlPattern.MatchString(text) ||
		phonePattern.MatchString(text) ||
		whatsappPattern.MatchString(text) ||
		smsPattern.MatchString(text)
}

type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// Ensure finds or creates the single conversation between a client and a
// company. Runs on the caller's transaction so lifecycle transitions commit
// their notification together with the state change.
func (s *ConversationService) Ensure(tx *gorm.DB, clientID, companyID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := tx.Where("client_id = ? AND company_id = ?", clientID, companyID).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = models.Conversation{
		ClientID:  clientID,
		CompanyID: companyID,
		Status:    models.ConversationStatusOpen,
	}
	if err := tx.Create(&conv).Error; err != nil {
		return nil, err
	}
	if err := s.logActivity(tx, &conv.ID, clientID, "conversation_created", ""); err != nil {
		return nil, err
	}
	return &conv, nil
}

// Append writes one message plus its activity breadcrumb on the caller's
// transaction. Used by lifecycle transitions; user-facing sends go through
// SendMessage which layers validation on top.
func (s *ConversationService) Append(tx *gorm.DB, conv *models.Conversation, senderID uuid.UUID, content string) (*models.Message, error) {
	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := tx.Create(msg).Error; err != nil {
		return nil, err
	}
	if err := s.logActivity(tx, &conv.ID, senderID, "message_sent", ""); err != nil {
		return nil, err
	}
	return msg, nil
}

// Notify ensures the client/company conversation exists and appends a
// message from the sender, all on the caller's transaction.
func (s *ConversationService) Notify(tx *gorm.DB, clientID, companyID, senderID uuid.UUID, content string) error {
	conv, err := s.Ensure(tx, clientID, companyID)
	if err != nil {
		return err
	}
	_, err = s.Append(tx, conv, senderID, content)
	return err
}

type SendMessageRequest struct {
	ConversationID uuid.UUID `json:"conversation_id" validate:"required"`
	Content        string    `json:"content" validate:"required"`
}

// SendMessage appends a user-authored message after participant, status,
// length and external-contact checks.
func (s *ConversationService) SendMessage(senderID uuid.UUID, senderRole models.Role, req *SendMessageRequest) (*models.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, Validationf("message cannot be empty")
	}
	// Rune count, not bytes: Arabic text is two bytes per letter in UTF-8.
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, Validationf("message exceeds %d characters", maxMessageLength)
	}
	if detectExternalContact(content) {
		return nil, Validationf("sharing external contact details is not allowed")
	}

	conv, err := s.getParticipantConversation(req.ConversationID, senderID, senderRole)
	if err != nil {
		return nil, err
	}
	if conv.Status == models.ConversationStatusClosed {
		return nil, Guardf("conversation is closed")
	}

	var msg *models.Message
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		msg, txErr = s.Append(tx, conv, senderID, content)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// StartConversation lets a client open (or reuse) a thread with a company,
// optionally sending a first message.
func (s *ConversationService) StartConversation(clientID uuid.UUID, role models.Role, companyUserID uuid.UUID, initialContent string) (*models.Conversation, error) {
	if role != models.RoleClient {
		return nil, Authorizationf("only clients can start conversations")
	}

	var company models.User
	if err := s.db.Where("id = ? AND role = ?", companyUserID, models.RoleCompany).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("company not found")
		}
		return nil, err
	}

	var conv *models.Conversation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		conv, txErr = s.Ensure(tx, clientID, company.ID)
		if txErr != nil {
			return txErr
		}
		content := strings.TrimSpace(initialContent)
		if content == "" {
			return nil
		}
		if detectExternalContact(content) {
			return Validationf("sharing external contact details is not allowed")
		}
		_, txErr = s.Append(tx, conv, clientID, content)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// UpdateStatus changes a conversation's status; only the company side may.
func (s *ConversationService) UpdateStatus(actorID uuid.UUID, actorRole models.Role, conversationID uuid.UUID, status string) (*models.Conversation, error) {
	newStatus, err := models.ParseConversationStatus(status)
	if err != nil {
		return nil, Validationf("invalid conversation status %q", status)
	}

	conv, err := s.getParticipantConversation(conversationID, actorID, actorRole)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleCompany {
		return nil, Authorizationf("only the company can change conversation status")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(conv).Update("status", newStatus).Error; err != nil {
			return err
		}
		return s.logActivity(tx, &conv.ID, actorID, "status_changed", string(newStatus))
	})
	if err != nil {
		return nil, err
	}
	conv.Status = newStatus
	return conv, nil
}

// ListConversations returns the actor's threads, newest first.
func (s *ConversationService) ListConversations(actorID uuid.UUID, actorRole models.Role) ([]models.Conversation, error) {
	query := s.db.Preload("Client").Preload("Company").Order("created_at DESC")
	switch actorRole {
	case models.RoleClient:
		query = query.Where("client_id = ?", actorID)
	case models.RoleCompany:
		query = query.Where("company_id = ?", actorID)
	default:
		return nil, Authorizationf("conversations are only available to clients and companies")
	}

	var convs []models.Conversation
	if err := query.Find(&convs).Error; err != nil {
		return nil, err
	}
	return convs, nil
}

// ListMessages returns messages in timestamp order, optionally only those
// after `since` — the polling contract used by the dashboards.
func (s *ConversationService) ListMessages(actorID uuid.UUID, actorRole models.Role, conversationID uuid.UUID, since *time.Time) ([]models.Message, error) {
	if _, err := s.getParticipantConversation(conversationID, actorID, actorRole); err != nil {
		return nil, err
	}

	query := s.db.Preload("Sender").Where("conversation_id = ?", conversationID)
	if since != nil {
		query = query.Where("created_at > ?", *since)
	}

	var messages []models.Message
	if err := query.Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *ConversationService) getParticipantConversation(conversationID, actorID uuid.UUID, actorRole models.Role) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("conversation not found")
		}
		return nil, err
	}

	switch actorRole {
	case models.RoleClient:
		if conv.ClientID != actorID {
			return nil, Authorizationf("not a participant in this conversation")
		}
	case models.RoleCompany:
		if conv.CompanyID != actorID {
			return nil, Authorizationf("not a participant in this conversation")
		}
	default:
		return nil, Authorizationf("not a participant in this conversation")
	}
	return &conv, nil
}

func (s *ConversationService) logActivity(tx *gorm.DB, conversationID *uuid.UUID, actorID uuid.UUID, action, meta string) error {
	return tx.Create(&models.ActivityLog{
		ConversationID: conversationID,
		ActorID:        actorID,
		Action:         action,
		Meta:           meta,
	}).Error
}
