// internal/services/valuation_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taqyim/valuation-backend/internal/models"
)

type lifecycleFixture struct {
	db      *gorm.DB
	svc     *ValuationService
	client  *models.User
	company *models.User
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	db := newTestDB(t)
	return &lifecycleFixture{
		db:      db,
		svc:     NewValuationService(db, NewConversationService(db), nil),
		client:  createUser(t, db, "client", models.RoleClient),
		company: createUser(t, db, "company", models.RoleCompany),
	}
}

func (f *lifecycleFixture) submit(t *testing.T) *models.ValuationRequest {
	t.Helper()
	request, err := f.svc.Submit(f.client.ID, &SubmitRequest{
		Title:         "تقييم منزل في بوشر",
		ValuationType: "house",
		CompanyID:     &f.company.ID,
	})
	require.NoError(t, err)
	return request
}

func TestSubmitCreatesPendingRequestAndNotifies(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	assert.Equal(t, models.RequestStatusPending, request.Status)
	require.NotNil(t, request.CompanyID)
	assert.Equal(t, f.company.ID, *request.CompanyID)

	// The assignment notification lands in the client/company conversation.
	var conv models.Conversation
	require.NoError(t, f.db.Where("client_id = ? AND company_id = ?", f.client.ID, f.company.ID).First(&conv).Error)
	var count int64
	require.NoError(t, f.db.Model(&models.Message{}).Where("conversation_id = ?", conv.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmitRejectsNonCompanyAssignee(t *testing.T) {
	f := newLifecycleFixture(t)
	other := createUser(t, f.db, "other-client", models.RoleClient)

	_, err := f.svc.Submit(f.client.ID, &SubmitRequest{
		Title:         "طلب",
		ValuationType: "land",
		CompanyID:     &other.ID,
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestRejectClearsCompanyAndAppointments(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	_, err := f.svc.ProposeAppointment(f.client.ID, models.RoleClient, request.ID, &ProposeAppointmentRequest{
		ProposedTime: "2025-03-01T10:00:00Z",
	})
	require.NoError(t, err)

	rejected, err := f.svc.Reject(f.company.ID, request.ID, "بيانات غير مكتملة")
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "بيانات غير مكتملة", *rejected.RejectionReason)
	assert.NotNil(t, rejected.RejectedAt)
	assert.Nil(t, rejected.CompanyID)

	var count int64
	require.NoError(t, f.db.Model(&models.VisitAppointment{}).Where("request_id = ?", request.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRejectRequiresReason(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	_, err := f.svc.Reject(f.company.ID, request.ID, "")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestRejectOnlyAssignedCompany(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)
	intruder := createUser(t, f.db, "other-company", models.RoleCompany)

	_, err := f.svc.Reject(intruder.ID, request.ID, "سبب")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthorization))
}

func TestCompletedAndAcceptedFlow(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	completed, err := f.svc.SubmitValue(f.company.ID, request.ID, 150000)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, completed.Status)
	require.NotNil(t, completed.Value)
	assert.Equal(t, 150000.0, *completed.Value)

	approved, err := f.svc.Accept(f.client.ID, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, approved.Status)
}

func TestAcceptRequiresCompletedStatus(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	_, err := f.svc.Accept(f.client.ID, request.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindGuard))
}

func TestSubmitValueGuards(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	_, err := f.svc.SubmitValue(f.company.ID, request.ID, 0)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))

	_, err = f.svc.SubmitValue(f.company.ID, request.ID, 150000)
	require.NoError(t, err)

	// Already completed; a second submission must be guarded.
	_, err = f.svc.SubmitValue(f.company.ID, request.ID, 160000)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindGuard))
}

func TestDeclineReopensAndClearsValue(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	_, err := f.svc.SubmitValue(f.company.ID, request.ID, 150000)
	require.NoError(t, err)

	declined, err := f.svc.Decline(f.client.ID, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, declined.Status)
	assert.Nil(t, declined.Value)
	require.NotNil(t, declined.CompanyID)
	assert.Equal(t, f.company.ID, *declined.CompanyID)

	// The same company may value the reopened request again.
	resubmitted, err := f.svc.SubmitValue(f.company.ID, request.ID, 145000)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, resubmitted.Status)
	assert.Equal(t, 145000.0, *resubmitted.Value)
}

func TestRevisionLoop(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	revised, err := f.svc.RequestRevision(f.company.ID, request.ID, "الرجاء إرفاق الكروكي")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRevisionRequested, revised.Status)

	// The company cannot act while the ball is with the client.
	_, err = f.svc.SubmitValue(f.company.ID, request.ID, 100000)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindGuard))

	title := "تقييم منزل في بوشر (محدث)"
	updated, err := f.svc.Update(f.client.ID, request.ID, &UpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, updated.Status)
	assert.Equal(t, title, updated.Title)
}

func TestUpdateOnlyOwner(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)
	other := createUser(t, f.db, "stranger", models.RoleClient)

	title := "x"
	_, err := f.svc.Update(other.ID, request.ID, &UpdateRequest{Title: &title})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthorization))
}

func TestTransferBlockedOnceCompleted(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)
	other := createUser(t, f.db, "second-company", models.RoleCompany)

	_, err := f.svc.SubmitValue(f.company.ID, request.ID, 150000)
	require.NoError(t, err)

	_, err = f.svc.Transfer(f.client.ID, request.ID, other.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindGuard))
}

func TestTransferAllowedAfterApproval(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)
	other := createUser(t, f.db, "second-company", models.RoleCompany)

	_, err := f.svc.SubmitValue(f.company.ID, request.ID, 150000)
	require.NoError(t, err)
	_, err = f.svc.Accept(f.client.ID, request.ID)
	require.NoError(t, err)

	// Approved is not terminal for the client; a transfer restarts the
	// process with a fresh company and no stale value.
	transferred, err := f.svc.Transfer(f.client.ID, request.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, transferred.Status)
	require.NotNil(t, transferred.CompanyID)
	assert.Equal(t, other.ID, *transferred.CompanyID)
	assert.Nil(t, transferred.Value)
}

func TestTransferResetsRequest(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)
	other := createUser(t, f.db, "second-company", models.RoleCompany)

	_, err := f.svc.ProposeAppointment(f.client.ID, models.RoleClient, request.ID, &ProposeAppointmentRequest{
		ProposedTime: "2025-03-01T10:00:00Z",
	})
	require.NoError(t, err)

	transferred, err := f.svc.Transfer(f.client.ID, request.ID, other.ID)
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusPending, transferred.Status)
	require.NotNil(t, transferred.CompanyID)
	assert.Equal(t, other.ID, *transferred.CompanyID)
	assert.Empty(t, transferred.Appointments)
}

func TestTransferRejectedAfterRejection(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)
	other := createUser(t, f.db, "second-company", models.RoleCompany)

	_, err := f.svc.Reject(f.company.ID, request.ID, "بيانات غير مكتملة")
	require.NoError(t, err)

	// A rejected request can be sent to another company; the rejection
	// outcome is wiped on reassignment.
	transferred, err := f.svc.Transfer(f.client.ID, request.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, transferred.Status)
	assert.Nil(t, transferred.RejectionReason)
	assert.Nil(t, transferred.RejectedAt)
}

func TestAppointmentLifecycle(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	first, err := f.svc.ProposeAppointment(f.client.ID, models.RoleClient, request.ID, &ProposeAppointmentRequest{
		ProposedTime: "2025-03-01T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusPending, first.Status)
	assert.Equal(t, models.RoleClient, first.ProposedBy)

	second, err := f.svc.ProposeAppointment(f.company.ID, models.RoleCompany, request.ID, &ProposeAppointmentRequest{
		ProposedTime: "2025-03-02T14:00:00Z",
	})
	require.NoError(t, err)

	accepted, err := f.svc.RespondAppointment(f.company.ID, second.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusAccepted, accepted.Status)

	final, err := f.svc.FinalizeAppointment(f.company.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusFinal, final.Status)

	// Finalizing one slot rejects every sibling proposal.
	var sibling models.VisitAppointment
	require.NoError(t, f.db.First(&sibling, "id = ?", first.ID).Error)
	assert.Equal(t, models.AppointmentStatusRejected, sibling.Status)
}

func TestFinalizeRequiresAcceptedAppointment(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	appointment, err := f.svc.ProposeAppointment(f.client.ID, models.RoleClient, request.ID, &ProposeAppointmentRequest{
		ProposedTime: "2025-03-01T10:00:00Z",
	})
	require.NoError(t, err)

	_, err = f.svc.FinalizeAppointment(f.company.ID, appointment.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindGuard))
}

func TestProposeAppointmentAcceptsMinutePrecision(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	appointment, err := f.svc.ProposeAppointment(f.client.ID, models.RoleClient, request.ID, &ProposeAppointmentRequest{
		ProposedTime: "2025-03-01T10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), appointment.ProposedTime)
}

func TestProposeAppointmentRejectsBadTime(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	_, err := f.svc.ProposeAppointment(f.client.ID, models.RoleClient, request.ID, &ProposeAppointmentRequest{
		ProposedTime: "next tuesday",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestConcurrentTransitionConflicts(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	// Simulate a racing writer bumping the lock version after our load.
	require.NoError(t, f.db.Model(&models.ValuationRequest{}).
		Where("id = ?", request.ID).
		Update("lock_version", gorm.Expr("lock_version + 1")).Error)

	stale := *request
	err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.transition(tx, &stale, map[string]interface{}{
			"status": models.RequestStatusCompleted,
		})
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConflict))

	var current models.ValuationRequest
	require.NoError(t, f.db.First(&current, "id = ?", request.ID).Error)
	assert.Equal(t, models.RequestStatusPending, current.Status)
}

func TestAttachDocumentAppendOnly(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)

	doc, err := f.svc.AttachDocument(f.client.ID, models.RoleClient, request.ID, "deed", "/uploads/deed.pdf", "deed.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentTypeDeed, doc.DocumentType)

	_, err = f.svc.AttachDocument(f.client.ID, models.RoleClient, request.ID, "selfie", "/uploads/x.png", "x.png")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))

	stranger := createUser(t, f.db, "doc-stranger", models.RoleClient)
	_, err = f.svc.AttachDocument(stranger.ID, models.RoleClient, request.ID, "deed", "/uploads/y.pdf", "y.pdf")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthorization))
}

func TestGetRequestParticipantsOnly(t *testing.T) {
	f := newLifecycleFixture(t)
	request := f.submit(t)
	admin := createUser(t, f.db, "the-admin", models.RoleAdmin)
	stranger := createUser(t, f.db, "get-stranger", models.RoleClient)

	_, err := f.svc.GetRequest(f.client.ID, models.RoleClient, request.ID)
	require.NoError(t, err)
	_, err = f.svc.GetRequest(f.company.ID, models.RoleCompany, request.ID)
	require.NoError(t, err)
	_, err = f.svc.GetRequest(admin.ID, models.RoleAdmin, request.ID)
	require.NoError(t, err)

	_, err = f.svc.GetRequest(stranger.ID, models.RoleClient, request.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthorization))
}

func TestListFiltersByRoleAndStatus(t *testing.T) {
	f := newLifecycleFixture(t)
	first := f.submit(t)
	f.submit(t)

	_, err := f.svc.SubmitValue(f.company.ID, first.ID, 90000)
	require.NoError(t, err)

	all, total, err := f.svc.List(f.client.ID, models.RoleClient, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	completed, total, err := f.svc.List(f.company.ID, models.RoleCompany, ListFilter{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, completed, 1)
	assert.Equal(t, first.ID, completed[0].ID)

	_, _, err = f.svc.List(f.client.ID, models.RoleClient, ListFilter{Status: "bogus"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}

func TestListPagination(t *testing.T) {
	f := newLifecycleFixture(t)
	for i := 0; i < 3; i++ {
		f.submit(t)
		time.Sleep(2 * time.Millisecond)
	}

	page, total, err := f.svc.List(f.client.ID, models.RoleClient, ListFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	page, _, err = f.svc.List(f.client.ID, models.RoleClient, ListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
