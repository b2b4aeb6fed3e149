// internal/services/valuation_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/models"
)

// ValuationService owns the request lifecycle. Every transition runs in one
// transaction guarded by the request's lock version, and writes its
// conversation notification in the same transaction.
type ValuationService struct {
	db            *gorm.DB
	conversations *ConversationService
	// Optional; email is best-effort and sent after commit, off the request path.
	emails *NotificationService
}

func NewValuationService(db *gorm.DB, conversations *ConversationService, emails *NotificationService) *ValuationService {
	return &ValuationService{db: db, conversations: conversations, emails: emails}
}

type SubmitRequest struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Description     string     `json:"description"`
	ValuationType   string     `json:"valuation_type" validate:"required"`
	RequestedAmount *float64   `json:"requested_amount,omitempty" validate:"omitempty,gt=0"`
	CompanyID       *uuid.UUID `json:"company_id,omitempty"`
	BankID          *uuid.UUID `json:"bank_id,omitempty"`
}

// Submit creates a new request in pending state, optionally preassigned to a
// company and associated with a bank.
func (s *ValuationService) Submit(clientID uuid.UUID, req *SubmitRequest) (*models.ValuationRequest, error) {
	vtype, err := models.ParseValuationType(req.ValuationType)
	if err != nil {
		return nil, Validationf("invalid valuation type %q", req.ValuationType)
	}
	if req.CompanyID != nil {
		if err := s.assertRole(*req.CompanyID, models.RoleCompany, "company"); err != nil {
			return nil, err
		}
	}
	if req.BankID != nil {
		if err := s.assertRole(*req.BankID, models.RoleBank, "bank"); err != nil {
			return nil, err
		}
	}

	request := &models.ValuationRequest{
		Title:           req.Title,
		Description:     req.Description,
		ValuationType:   vtype,
		RequestedAmount: req.RequestedAmount,
		Status:          models.RequestStatusPending,
		ClientID:        clientID,
		CompanyID:       req.CompanyID,
		BankID:          req.BankID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return err
		}
		if request.CompanyID != nil {
			return s.conversations.Notify(tx, clientID, *request.CompanyID, clientID,
				fmt.Sprintf("New valuation request: %s", request.Title))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.getRequest(request.ID)
	if err != nil {
		return nil, err
	}
	if s.emails != nil && created.Company != nil {
		go s.emails.SendNewRequestEmail(created.Company, created)
	}
	return created, nil
}

type UpdateRequest struct {
	Title           *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Description     *string  `json:"description,omitempty"`
	RequestedAmount *float64 `json:"requested_amount,omitempty" validate:"omitempty,gt=0"`
}

// Update lets the owning client amend a pending or revision-requested
// request. Amending a revision-requested request returns it to pending,
// closing the revision loop.
func (s *ValuationService) Update(clientID, requestID uuid.UUID, req *UpdateRequest) (*models.ValuationRequest, error) {
	request, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.ClientID != clientID {
		return nil, Authorizationf("only the request owner can update it")
	}
	if request.Status != models.RequestStatusPending && request.Status != models.RequestStatusRevisionRequested {
		return nil, Guardf("request cannot be updated in status %s", request.Status)
	}

	updates := map[string]interface{}{"status": models.RequestStatusPending}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.RequestedAmount != nil {
		updates["requested_amount"] = *req.RequestedAmount
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, request, updates); err != nil {
			return err
		}
		if request.CompanyID != nil {
			return s.conversations.Notify(tx, request.ClientID, *request.CompanyID, clientID,
				fmt.Sprintf("Request %q was updated by the client", request.Title))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getRequest(requestID)
}

// Reject declines a pending request. The rejection reason is recorded, all
// appointments are deleted and the company assignment is cleared so the
// client can send the request elsewhere.
func (s *ValuationService) Reject(companyID, requestID uuid.UUID, reason string) (*models.ValuationRequest, error) {
	if reason == "" {
		return nil, Validationf("rejection reason is required")
	}
	request, err := s.getAssigned(requestID, companyID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, Guardf("only pending requests can be rejected, current status is %s", request.Status)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", request.ID).Delete(&models.VisitAppointment{}).Error; err != nil {
			return err
		}
		if err := s.transition(tx, request, map[string]interface{}{
			"status":           models.RequestStatusRejected,
			"rejection_reason": reason,
			"rejected_at":      now,
			"company_id":       nil,
		}); err != nil {
			return err
		}
		return s.conversations.Notify(tx, request.ClientID, companyID, companyID,
			fmt.Sprintf("Request %q was rejected: %s", request.Title, reason))
	})
	if err != nil {
		return nil, err
	}

	rejected, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if s.emails != nil {
		go s.emails.SendValuationRejectedEmail(&rejected.Client, rejected, reason)
	}
	return rejected, nil
}

// RequestRevision asks the client to amend a pending request.
func (s *ValuationService) RequestRevision(companyID, requestID uuid.UUID, notes string) (*models.ValuationRequest, error) {
	if notes == "" {
		return nil, Validationf("revision notes are required")
	}
	request, err := s.getAssigned(requestID, companyID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, Guardf("revision can only be requested on pending requests, current status is %s", request.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, request, map[string]interface{}{
			"status": models.RequestStatusRevisionRequested,
		}); err != nil {
			return err
		}
		return s.conversations.Notify(tx, request.ClientID, companyID, companyID,
			fmt.Sprintf("Revision requested on %q: %s", request.Title, notes))
	})
	if err != nil {
		return nil, err
	}
	return s.getRequest(requestID)
}

// SubmitValue records the company's valuation and completes the request. A
// client decline reopens the request to pending, so the same assigned company
// may submit again.
func (s *ValuationService) SubmitValue(companyID, requestID uuid.UUID, value float64) (*models.ValuationRequest, error) {
	if value <= 0 {
		return nil, Validationf("valuation value must be positive")
	}
	request, err := s.getAssigned(requestID, companyID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, Guardf("value can only be submitted on pending requests, current status is %s", request.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, request, map[string]interface{}{
			"status": models.RequestStatusCompleted,
			"value":  value,
		}); err != nil {
			return err
		}
		return s.conversations.Notify(tx, request.ClientID, companyID, companyID,
			fmt.Sprintf("Valuation for %q is ready: %.2f", request.Title, value))
	})
	if err != nil {
		return nil, err
	}

	completed, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if s.emails != nil {
		go s.emails.SendValuationCompletedEmail(&completed.Client, completed)
	}
	return completed, nil
}

// Accept is the client's sign-off on a completed valuation.
func (s *ValuationService) Accept(clientID, requestID uuid.UUID) (*models.ValuationRequest, error) {
	request, err := s.getOwned(requestID, clientID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusCompleted {
		return nil, Guardf("only completed requests can be accepted, current status is %s", request.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, request, map[string]interface{}{
			"status": models.RequestStatusApproved,
		}); err != nil {
			return err
		}
		if request.CompanyID != nil {
			return s.conversations.Notify(tx, request.ClientID, *request.CompanyID, clientID,
				fmt.Sprintf("The valuation for %q was accepted", request.Title))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getRequest(requestID)
}

// Decline sends a completed valuation back to the same company. The value is
// cleared; a value only ever belongs to a completed request.
func (s *ValuationService) Decline(clientID, requestID uuid.UUID) (*models.ValuationRequest, error) {
	request, err := s.getOwned(requestID, clientID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusCompleted {
		return nil, Guardf("only completed requests can be declined, current status is %s", request.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, request, map[string]interface{}{
			"status": models.RequestStatusPending,
			"value":  nil,
		}); err != nil {
			return err
		}
		if request.CompanyID != nil {
			return s.conversations.Notify(tx, request.ClientID, *request.CompanyID, clientID,
				fmt.Sprintf("The valuation for %q was declined, please revise", request.Title))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getRequest(requestID)
}

// Transfer reassigns the request to another company. Completed requests keep
// their company; everything else, approved included, resets to a clean pending
// state with appointments and any prior outcome wiped.
func (s *ValuationService) Transfer(clientID, requestID, newCompanyID uuid.UUID) (*models.ValuationRequest, error) {
	request, err := s.getOwned(requestID, clientID)
	if err != nil {
		return nil, err
	}
	if request.Status == models.RequestStatusCompleted {
		return nil, Guardf("requests in status %s cannot be transferred", request.Status)
	}
	if request.CompanyID != nil && *request.CompanyID == newCompanyID {
		return nil, Validationf("request is already assigned to this company")
	}
	if err := s.assertRole(newCompanyID, models.RoleCompany, "company"); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", request.ID).Delete(&models.VisitAppointment{}).Error; err != nil {
			return err
		}
		if err := s.transition(tx, request, map[string]interface{}{
			"status":           models.RequestStatusPending,
			"company_id":       newCompanyID,
			"value":            nil,
			"rejection_reason": nil,
			"rejected_at":      nil,
		}); err != nil {
			return err
		}
		return s.conversations.Notify(tx, request.ClientID, newCompanyID, clientID,
			fmt.Sprintf("Valuation request transferred to you: %s", request.Title))
	})
	if err != nil {
		return nil, err
	}
	return s.getRequest(requestID)
}

type ProposeAppointmentRequest struct {
	ProposedTime string `json:"proposed_time" validate:"required"`
	Notes        string `json:"notes"`
}

// Clients send minute-precision timestamps without a zone; accept those next
// to full RFC3339.
var appointmentTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseAppointmentTime(value string) (time.Time, error) {
	for _, layout := range appointmentTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, Validationf("proposed_time must be an ISO 8601 timestamp, got %q", value)
}

// ProposeAppointment adds a pending site-visit proposal from either side of
// the request. The request status is untouched.
func (s *ValuationService) ProposeAppointment(actorID uuid.UUID, actorRole models.Role, requestID uuid.UUID, req *ProposeAppointmentRequest) (*models.VisitAppointment, error) {
	proposedTime, err := parseAppointmentTime(req.ProposedTime)
	if err != nil {
		return nil, err
	}

	request, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	switch actorRole {
	case models.RoleClient:
		if request.ClientID != actorID {
			return nil, Authorizationf("only the request owner can propose a visit")
		}
	case models.RoleCompany:
		if request.CompanyID == nil || *request.CompanyID != actorID {
			return nil, Authorizationf("only the assigned company can propose a visit")
		}
	default:
		return nil, Authorizationf("only the client or the assigned company can propose a visit")
	}

	appointment := &models.VisitAppointment{
		RequestID:    request.ID,
		ProposedTime: proposedTime,
		ProposedBy:   actorRole,
		Status:       models.AppointmentStatusPending,
		Notes:        req.Notes,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(appointment).Error; err != nil {
			return err
		}
		if request.CompanyID == nil {
			return nil
		}
		return s.conversations.Notify(tx, request.ClientID, *request.CompanyID, actorID,
			fmt.Sprintf("Visit proposed for %q at %s", request.Title, proposedTime.Format(time.RFC3339)))
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// RespondAppointment lets the assigned company accept or reject a pending
// proposal.
func (s *ValuationService) RespondAppointment(companyID, appointmentID uuid.UUID, accept bool) (*models.VisitAppointment, error) {
	appointment, request, err := s.getAppointment(appointmentID)
	if err != nil {
		return nil, err
	}
	if request.CompanyID == nil || *request.CompanyID != companyID {
		return nil, Authorizationf("only the assigned company can respond to appointments")
	}
	if appointment.Status != models.AppointmentStatusPending {
		return nil, Guardf("appointment already responded to, current status is %s", appointment.Status)
	}

	status := models.AppointmentStatusRejected
	if accept {
		status = models.AppointmentStatusAccepted
	}
	if err := s.db.Model(appointment).Update("status", status).Error; err != nil {
		return nil, err
	}
	appointment.Status = status
	return appointment, nil
}

// FinalizeAppointment promotes an accepted proposal to the final visit slot
// and rejects every other appointment on the request. At most one final
// appointment can exist per request.
func (s *ValuationService) FinalizeAppointment(companyID, appointmentID uuid.UUID) (*models.VisitAppointment, error) {
	appointment, request, err := s.getAppointment(appointmentID)
	if err != nil {
		return nil, err
	}
	if request.CompanyID == nil || *request.CompanyID != companyID {
		return nil, Authorizationf("only the assigned company can finalize appointments")
	}
	if appointment.Status != models.AppointmentStatusAccepted {
		return nil, Guardf("only accepted appointments can be finalized, current status is %s", appointment.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VisitAppointment{}).
			Where("request_id = ? AND id <> ? AND status <> ?", request.ID, appointment.ID, models.AppointmentStatusFinal).
			Update("status", models.AppointmentStatusRejected).Error; err != nil {
			return err
		}
		if err := tx.Model(appointment).Update("status", models.AppointmentStatusFinal).Error; err != nil {
			return err
		}
		return s.conversations.Notify(tx, request.ClientID, companyID, companyID,
			fmt.Sprintf("Visit for %q confirmed at %s", request.Title, appointment.ProposedTime.Format(time.RFC3339)))
	})
	if err != nil {
		return nil, err
	}
	appointment.Status = models.AppointmentStatusFinal
	return appointment, nil
}

// AttachDocument records a stored file against the request. Documents are
// append-only; nothing ever edits or removes one.
func (s *ValuationService) AttachDocument(actorID uuid.UUID, actorRole models.Role, requestID uuid.UUID, docType, filePath, fileName string) (*models.RequestDocument, error) {
	documentType, err := models.ParseDocumentType(docType)
	if err != nil {
		return nil, Validationf("invalid document type %q", docType)
	}

	request, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	switch actorRole {
	case models.RoleAdmin:
	case models.RoleClient:
		if request.ClientID != actorID {
			return nil, Authorizationf("only the request owner can attach documents")
		}
	case models.RoleCompany:
		if request.CompanyID == nil || *request.CompanyID != actorID {
			return nil, Authorizationf("only the assigned company can attach documents")
		}
	default:
		return nil, Authorizationf("not allowed to attach documents to this request")
	}

	document := &models.RequestDocument{
		RequestID:    request.ID,
		DocumentType: documentType,
		FilePath:     filePath,
		FileName:     fileName,
		UploadedBy:   actorID,
	}
	if err := s.db.Create(document).Error; err != nil {
		return nil, err
	}
	return document, nil
}

// GetRequest returns the full request for a participant or an admin.
func (s *ValuationService) GetRequest(actorID uuid.UUID, actorRole models.Role, requestID uuid.UUID) (*models.ValuationRequest, error) {
	request, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	switch actorRole {
	case models.RoleAdmin:
	case models.RoleClient:
		if request.ClientID != actorID {
			return nil, Authorizationf("not a participant in this request")
		}
	case models.RoleCompany:
		if request.CompanyID == nil || *request.CompanyID != actorID {
			return nil, Authorizationf("not a participant in this request")
		}
	case models.RoleBank:
		if request.BankID == nil || *request.BankID != actorID {
			return nil, Authorizationf("not a participant in this request")
		}
	default:
		return nil, Authorizationf("not a participant in this request")
	}
	return request, nil
}

type ListFilter struct {
	Status string
	Page   int
	Limit  int
}

// List returns the actor's requests newest first, optionally filtered by
// status, with the total matching count.
func (s *ValuationService) List(actorID uuid.UUID, actorRole models.Role, filter ListFilter) ([]models.ValuationRequest, int64, error) {
	query := s.db.Model(&models.ValuationRequest{})
	switch actorRole {
	case models.RoleAdmin:
	case models.RoleClient:
		query = query.Where("client_id = ?", actorID)
	case models.RoleCompany:
		query = query.Where("company_id = ?", actorID)
	case models.RoleBank:
		query = query.Where("bank_id = ?", actorID)
	default:
		return nil, 0, Authorizationf("unknown role")
	}

	if filter.Status != "" {
		status, err := models.ParseRequestStatus(filter.Status)
		if err != nil {
			return nil, 0, Validationf("invalid status filter %q", filter.Status)
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var requests []models.ValuationRequest
	err := query.
		Preload("Client").Preload("Company").Preload("Documents").Preload("Appointments").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// transition applies a lifecycle update only if the request's lock version is
// unchanged since it was loaded. A lost race surfaces as a retryable conflict
// and rolls back the enclosing transaction.
func (s *ValuationService) transition(tx *gorm.DB, request *models.ValuationRequest, updates map[string]interface{}) error {
	updates["lock_version"] = request.LockVersion + 1
	result := tx.Model(&models.ValuationRequest{}).
		Where("id = ? AND lock_version = ?", request.ID, request.LockVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return Conflictf("request was modified concurrently, please retry")
	}
	return nil
}

func (s *ValuationService) getRequest(requestID uuid.UUID) (*models.ValuationRequest, error) {
	var request models.ValuationRequest
	err := s.db.
		Preload("Client").Preload("Company").Preload("Documents").Preload("Appointments").
		First(&request, "id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("valuation request not found")
		}
		return nil, err
	}
	return &request, nil
}

func (s *ValuationService) getAssigned(requestID, companyID uuid.UUID) (*models.ValuationRequest, error) {
	request, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.CompanyID == nil || *request.CompanyID != companyID {
		return nil, Authorizationf("request is not assigned to this company")
	}
	return request, nil
}

func (s *ValuationService) getOwned(requestID, clientID uuid.UUID) (*models.ValuationRequest, error) {
	request, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.ClientID != clientID {
		return nil, Authorizationf("only the request owner can do this")
	}
	return request, nil
}

func (s *ValuationService) getAppointment(appointmentID uuid.UUID) (*models.VisitAppointment, *models.ValuationRequest, error) {
	var appointment models.VisitAppointment
	if err := s.db.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NotFoundf("appointment not found")
		}
		return nil, nil, err
	}
	request, err := s.getRequest(appointment.RequestID)
	if err != nil {
		return nil, nil, err
	}
	return &appointment, request, nil
}

func (s *ValuationService) assertRole(userID uuid.UUID, role models.Role, label string) error {
	var user models.User
	if err := s.db.Where("id = ? AND role = ?", userID, role).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Validationf("%s not found", label)
		}
		return err
	}
	return nil
}
