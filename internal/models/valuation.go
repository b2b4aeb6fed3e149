// internal/models/valuation.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type ValuationRequest struct {
	BaseModel
	Title           string        `json:"title" gorm:"size:200;not null"`
	Description     string        `json:"description" gorm:"type:text"`
	ValuationType   ValuationType `json:"valuation_type" gorm:"type:varchar(20);not null"`
	RequestedAmount *float64      `json:"requested_amount,omitempty"`
	Value           *float64      `json:"value,omitempty"`
	Status          RequestStatus `json:"status" gorm:"type:varchar(30);default:'pending';index"`
	RejectionReason *string       `json:"rejection_reason,omitempty" gorm:"type:text"`
	RejectedAt      *time.Time    `json:"rejected_at,omitempty"`
	ClientID        uuid.UUID     `json:"client_id" gorm:"type:uuid;not null;index"`
	CompanyID       *uuid.UUID    `json:"company_id,omitempty" gorm:"type:uuid;index"`
	BankID          *uuid.UUID    `json:"bank_id,omitempty" gorm:"type:uuid;index"`

	// Bumped on every lifecycle transition so concurrent company actions on
	// the same request are detected instead of silently last-writer-wins.
	LockVersion int `json:"-" gorm:"not null;default:0"`

	// Relationships
	Client       User               `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Company      *User              `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Bank         *User              `json:"bank,omitempty" gorm:"foreignKey:BankID"`
	Documents    []RequestDocument  `json:"documents,omitempty" gorm:"foreignKey:RequestID"`
	Appointments []VisitAppointment `json:"appointments,omitempty" gorm:"foreignKey:RequestID"`
}

// RequestDocument is immutable once created; the upload flow only ever adds rows.
type RequestDocument struct {
	BaseModel
	RequestID    uuid.UUID    `json:"request_id" gorm:"type:uuid;not null;index"`
	DocumentType DocumentType `json:"document_type" gorm:"type:varchar(30);not null"`
	FilePath     string       `json:"file_path" gorm:"size:500;not null"`
	FileName     string       `json:"file_name" gorm:"size:255"`
	UploadedBy   uuid.UUID    `json:"uploaded_by" gorm:"type:uuid;not null"`
}

type VisitAppointment struct {
	BaseModel
	RequestID    uuid.UUID         `json:"request_id" gorm:"type:uuid;not null;index"`
	ProposedTime time.Time         `json:"proposed_time" gorm:"not null"`
	ProposedBy   Role              `json:"proposed_by" gorm:"type:varchar(20);not null"`
	Status       AppointmentStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	Notes        string            `json:"notes,omitempty" gorm:"type:text"`
}
