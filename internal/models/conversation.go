// internal/models/conversation.go
package models

import (
	"github.com/google/uuid"
)

// Conversation is uniquely keyed by (client, company); lifecycle transitions
// use it as the notification side-channel visible to the client.
type Conversation struct {
	BaseModel
	ClientID  uuid.UUID          `json:"client_id" gorm:"type:uuid;not null;uniqueIndex:idx_client_company"`
	CompanyID uuid.UUID          `json:"company_id" gorm:"type:uuid;not null;uniqueIndex:idx_client_company"`
	Status    ConversationStatus `json:"status" gorm:"type:varchar(20);default:'open'"`

	Client   User      `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Company  User      `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
}

// Message rows are append-only and ordered by CreatedAt.
type Message struct {
	BaseModel
	ConversationID uuid.UUID `json:"conversation_id" gorm:"type:uuid;not null;index"`
	SenderID       uuid.UUID `json:"sender_id" gorm:"type:uuid;not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`

	Sender User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

// ActivityLog entries are audit breadcrumbs, never consulted by business logic.
type ActivityLog struct {
	BaseModel
	ConversationID *uuid.UUID `json:"conversation_id,omitempty" gorm:"type:uuid;index"`
	ActorID        uuid.UUID  `json:"actor_id" gorm:"type:uuid;not null"`
	Action         string     `json:"action" gorm:"size:100;not null"`
	Meta           string     `json:"meta,omitempty" gorm:"size:255"`
}
