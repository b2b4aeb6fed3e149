// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums. Status columns are free text at the database level, so every enum
// gets a ParseX constructor that rejects unknown values at the boundary.

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleClient  Role = "client"
	RoleCompany Role = "company"
	RoleBank    Role = "bank"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleClient, RoleCompany, RoleBank:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type ValuationType string

const (
	ValuationTypeLand     ValuationType = "land"
	ValuationTypeProperty ValuationType = "property"
	ValuationTypeHouse    ValuationType = "house"
)

func ParseValuationType(s string) (ValuationType, error) {
	switch ValuationType(s) {
	case ValuationTypeLand, ValuationTypeProperty, ValuationTypeHouse:
		return ValuationType(s), nil
	}
	return "", fmt.Errorf("unknown valuation type %q", s)
}

type RequestStatus string

const (
	RequestStatusPending           RequestStatus = "pending"
	RequestStatusCompleted         RequestStatus = "completed"
	RequestStatusRevisionRequested RequestStatus = "revision_requested"
	RequestStatusRejected          RequestStatus = "rejected"
	RequestStatusApproved          RequestStatus = "approved"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case RequestStatusPending, RequestStatusCompleted, RequestStatusRevisionRequested,
		RequestStatusRejected, RequestStatusApproved:
		return RequestStatus(s), nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

type AppointmentStatus string

const (
	AppointmentStatusPending  AppointmentStatus = "pending"
	AppointmentStatusAccepted AppointmentStatus = "accepted"
	AppointmentStatusRejected AppointmentStatus = "rejected"
	AppointmentStatusFinal    AppointmentStatus = "final"
)

type DocumentType string

const (
	DocumentTypeIdentityCard          DocumentType = "identity_card"
	DocumentTypeSiteSketch            DocumentType = "site_sketch"
	DocumentTypeDeed                  DocumentType = "deed"
	DocumentTypeCompletionCertificate DocumentType = "completion_certificate"
	DocumentTypeMap                   DocumentType = "map"
	DocumentTypeContractorAgreement   DocumentType = "contractor_agreement"
	DocumentTypeFinalReport           DocumentType = "final_report"
)

func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocumentTypeIdentityCard, DocumentTypeSiteSketch, DocumentTypeDeed,
		DocumentTypeCompletionCertificate, DocumentTypeMap,
		DocumentTypeContractorAgreement, DocumentTypeFinalReport:
		return DocumentType(s), nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

type ConversationStatus string

const (
	ConversationStatusOpen    ConversationStatus = "open"
	ConversationStatusPending ConversationStatus = "pending"
	ConversationStatusClosed  ConversationStatus = "closed"
)

func ParseConversationStatus(s string) (ConversationStatus, error) {
	switch ConversationStatus(s) {
	case ConversationStatusOpen, ConversationStatusPending, ConversationStatusClosed:
		return ConversationStatus(s), nil
	}
	return "", fmt.Errorf("unknown conversation status %q", s)
}

type LoanType string

const (
	LoanTypeHousing    LoanType = "housing"
	LoanTypeCommercial LoanType = "commercial"
	LoanTypePersonal   LoanType = "personal"
)

func ParseLoanType(s string) (LoanType, error) {
	switch LoanType(s) {
	case LoanTypeHousing, LoanTypeCommercial, LoanTypePersonal:
		return LoanType(s), nil
	}
	return "", fmt.Errorf("unknown loan type %q", s)
}

// UseCategory selects one of the four use-specific land price columns.
type UseCategory string

const (
	UseCategoryHousing      UseCategory = "housing"
	UseCategoryCommercial   UseCategory = "commercial"
	UseCategoryIndustrial   UseCategory = "industrial"
	UseCategoryAgricultural UseCategory = "agricultural"
)

func ParseUseCategory(s string) (UseCategory, error) {
	switch UseCategory(s) {
	case UseCategoryHousing, UseCategoryCommercial, UseCategoryIndustrial, UseCategoryAgricultural:
		return UseCategory(s), nil
	}
	return "", fmt.Errorf("unknown use category %q", s)
}
