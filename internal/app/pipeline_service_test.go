package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"talentgate/internal/common"
	"talentgate/internal/domain/application"
	"talentgate/internal/domain/pipeline"
	"talentgate/internal/domain/user"
	"talentgate/internal/observability"
)

type pipelineFixture struct {
	service       *PipelineService
	repo          *fakePipelineRepo
	applications  *fakeApplicationRepo
	opportunities *fakeOpportunityRepo
	appService    *ApplicationService
	opportunityID common.UUID
	companyID     common.UUID
	applicantID   common.UUID
	applicationID common.UUID
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	appFixture := newApplicationFixture(t)
	applicantID := common.NewUUID()
	created, err := appFixture.service.Apply(context.Background(), appFixture.opportunityID, applicantID, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	repo := newFakePipelineRepo()
	service := NewPipelineService(repo, appFixture.repo, appFixture.opportunities, observability.NewLogger())
	return &pipelineFixture{
		service:       service,
		repo:          repo,
		applications:  appFixture.repo,
		opportunities: appFixture.opportunities,
		appService:    appFixture.service,
		opportunityID: appFixture.opportunityID,
		companyID:     appFixture.companyID,
		applicantID:   applicantID,
		applicationID: created.ID,
	}
}

func (f *pipelineFixture) applicationStatus(t *testing.T) application.Status {
	t.Helper()
	app, err := f.applications.GetByID(context.Background(), f.applicationID)
	if err != nil {
		t.Fatalf("expected application to exist, got %v", err)
	}
	return app.Status
}

func TestAdvanceCreatesRecordAndSyncsApplication(t *testing.T) {
	fixture := newPipelineFixture(t)
	scheduled := time.Now().UTC().Add(48 * time.Hour)

	record, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{
		Round:       1,
		ScheduledAt: &scheduled,
		Interviewer: "Dana",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if record.Status != pipeline.StatusInterviewing {
		t.Fatalf("expected interviewing record, got %s", record.Status)
	}
	if record.InterviewRound != 1 || record.Interviewer != "Dana" {
		t.Fatal("expected interview details to be stored")
	}
	if got := fixture.applicationStatus(t); got != application.StatusInterviewing {
		t.Fatalf("expected application interviewing, got %s", got)
	}
}

func TestAdvanceDuplicateFails(t *testing.T) {
	fixture := newPipelineFixture(t)
	if _, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	_, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 2})
	if !common.Is(err, common.CodeDuplicatePipelineRecord) {
		t.Fatalf("expected duplicate_pipeline_record, got %v", err)
	}
	if fixture.repo.count() != 1 {
		t.Fatalf("expected one record, got %d", fixture.repo.count())
	}
}

func TestAdvanceWithoutApplicationFails(t *testing.T) {
	fixture := newPipelineFixture(t)
	_, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, common.NewUUID(), pipeline.InterviewDetails{})
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdvanceForeignOpportunityFails(t *testing.T) {
	fixture := newPipelineFixture(t)
	_, err := fixture.service.AdvanceToInterviewing(context.Background(), common.NewUUID(), fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{})
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAdvancePartialFailureIsRecoverable(t *testing.T) {
	fixture := newPipelineFixture(t)
	fixture.applications.updateStatusErr = common.NewError(common.CodeStoreFailure, "store unavailable", nil)

	_, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1})
	if !common.Is(err, common.CodePartialFailure) {
		t.Fatalf("expected partial_failure, got %v", err)
	}
	var appErr *common.Error
	if !errors.As(err, &appErr) || appErr.Step != "update_application_status" {
		t.Fatalf("expected failed step to be named, got %+v", appErr)
	}
	if fixture.repo.count() != 1 {
		t.Fatal("expected orphan record to remain for retry")
	}
	if got := fixture.applicationStatus(t); got != application.StatusSubmitted {
		t.Fatalf("expected application still submitted, got %s", got)
	}

	// Retry after the store recovers: the existing orphan is completed
	// instead of being reported as a duplicate.
	fixture.applications.updateStatusErr = nil
	record, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if record.Status != pipeline.StatusInterviewing {
		t.Fatalf("expected interviewing record, got %s", record.Status)
	}
	if fixture.repo.count() != 1 {
		t.Fatalf("expected one record after retry, got %d", fixture.repo.count())
	}
	if got := fixture.applicationStatus(t); got != application.StatusInterviewing {
		t.Fatalf("expected application interviewing, got %s", got)
	}
}

func TestHireSetsRecordAndApplication(t *testing.T) {
	fixture := newPipelineFixture(t)
	start := time.Now().UTC().AddDate(0, 1, 0)

	result, err := fixture.service.TransitionToHired(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.HireDetails{
		Role:      "Junior Backend Engineer",
		StartDate: &start,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Record.Status != pipeline.StatusHired {
		t.Fatalf("expected hired record, got %s", result.Record.Status)
	}
	if result.Record.Role != "Junior Backend Engineer" || result.Record.StartDate == nil {
		t.Fatal("expected hire details to be stored")
	}
	if got := fixture.applicationStatus(t); got != application.StatusHired {
		t.Fatalf("expected application hired, got %s", got)
	}
}

func TestHireFromInterviewingReplacesRecord(t *testing.T) {
	fixture := newPipelineFixture(t)
	if _, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 2}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	result, err := fixture.service.TransitionToHired(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.HireDetails{Role: "Analyst"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Record.Status != pipeline.StatusHired {
		t.Fatalf("expected hired record, got %s", result.Record.Status)
	}
	if fixture.repo.count() != 1 {
		t.Fatalf("expected upsert to keep one record, got %d", fixture.repo.count())
	}
}

func TestHireIsIdempotent(t *testing.T) {
	fixture := newPipelineFixture(t)
	details := pipeline.HireDetails{Role: "Analyst"}

	if _, err := fixture.service.TransitionToHired(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, details); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := fixture.service.TransitionToHired(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, details); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if fixture.repo.count() != 1 {
		t.Fatalf("expected exactly one record, got %d", fixture.repo.count())
	}
	if got := fixture.applicationStatus(t); got != application.StatusHired {
		t.Fatalf("expected application hired, got %s", got)
	}
}

func TestHireRecordsComplianceNote(t *testing.T) {
	fixture := newPipelineFixture(t)
	result, err := fixture.service.TransitionToHired(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.HireDetails{
		Role:  "Analyst",
		Notes: "offer terms acknowledged",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.NoteWarning != "" {
		t.Fatalf("expected no warning, got %q", result.NoteWarning)
	}
	opp, _ := fixture.opportunities.GetByID(context.Background(), fixture.opportunityID)
	last := opp.History[len(opp.History)-1]
	if last.Note != "offer terms acknowledged" {
		t.Fatalf("expected hire note in history, got %q", last.Note)
	}
}

func TestHireNoteFailureIsNonFatal(t *testing.T) {
	fixture := newPipelineFixture(t)
	fixture.opportunities.appendHistoryErr = common.NewError(common.CodeStoreFailure, "store unavailable", nil)

	result, err := fixture.service.TransitionToHired(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.HireDetails{
		Role:  "Analyst",
		Notes: "offer terms acknowledged",
	})
	if err != nil {
		t.Fatalf("expected hire to succeed despite note failure, got %v", err)
	}
	if result.NoteWarning == "" {
		t.Fatal("expected a warning about the unrecorded note")
	}
	if got := fixture.applicationStatus(t); got != application.StatusHired {
		t.Fatalf("expected application hired, got %s", got)
	}
}

func TestHireWithdrawnApplicationFails(t *testing.T) {
	fixture := newPipelineFixture(t)
	if _, err := fixture.appService.Withdraw(context.Background(), fixture.applicationID, fixture.applicantID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	_, err := fixture.service.TransitionToHired(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.HireDetails{Role: "Analyst"})
	if !common.Is(err, common.CodeInvalidTransition) {
		t.Fatalf("expected invalid_transition, got %v", err)
	}
}

func TestUpdateDetailsLeavesStatusAndApplicationAlone(t *testing.T) {
	fixture := newPipelineFixture(t)
	record, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	round := 2
	interviewer := "Priya"
	updated, err := fixture.service.UpdateDetails(context.Background(), fixture.companyID, record.ID, pipeline.DetailUpdate{
		InterviewRound: &round,
		Interviewer:    &interviewer,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.InterviewRound != 2 || updated.Interviewer != "Priya" {
		t.Fatal("expected details to be updated")
	}
	if updated.Status != pipeline.StatusInterviewing {
		t.Fatalf("expected status untouched, got %s", updated.Status)
	}
	if got := fixture.applicationStatus(t); got != application.StatusInterviewing {
		t.Fatalf("expected application untouched, got %s", got)
	}
}

func TestRemoveRevertsApplication(t *testing.T) {
	fixture := newPipelineFixture(t)
	record, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	admin := user.Actor{ID: common.NewUUID(), Role: user.RoleAdmin}
	if err := fixture.service.RemoveFromPipeline(context.Background(), admin, record.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fixture.repo.count() != 0 {
		t.Fatalf("expected record deleted, got %d", fixture.repo.count())
	}
	if got := fixture.applicationStatus(t); got != application.StatusSubmitted {
		t.Fatalf("expected application reverted to submitted, got %s", got)
	}
}

func TestRemoveStaleRecordKeepsWithdrawnApplication(t *testing.T) {
	fixture := newPipelineFixture(t)
	record, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := fixture.appService.Withdraw(context.Background(), fixture.applicationID, fixture.applicantID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	company := user.Actor{ID: fixture.companyID, Role: user.RoleCompany}
	if err := fixture.service.RemoveFromPipeline(context.Background(), company, record.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fixture.repo.count() != 0 {
		t.Fatal("expected stale record deleted")
	}
	if got := fixture.applicationStatus(t); got != application.StatusWithdrawn {
		t.Fatalf("expected withdrawn application untouched, got %s", got)
	}
}

func TestRemoveRepairsPartiallyFailedHire(t *testing.T) {
	fixture := newPipelineFixture(t)
	if _, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	fixture.applications.updateStatusErr = common.NewError(common.CodeStoreFailure, "store unavailable", nil)
	_, err := fixture.service.TransitionToHired(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.HireDetails{Role: "Analyst"})
	if !common.Is(err, common.CodePartialFailure) {
		t.Fatalf("expected partial_failure, got %v", err)
	}
	fixture.applications.updateStatusErr = nil

	// The record says hired while the application still says interviewing.
	// Removing the record must still revert the application.
	record, err := fixture.repo.FindByPair(context.Background(), fixture.opportunityID, fixture.applicantID)
	if err != nil {
		t.Fatalf("expected record to exist, got %v", err)
	}
	if record.Status != pipeline.StatusHired {
		t.Fatalf("expected hired record, got %s", record.Status)
	}
	if got := fixture.applicationStatus(t); got != application.StatusInterviewing {
		t.Fatalf("expected application still interviewing, got %s", got)
	}

	admin := user.Actor{ID: common.NewUUID(), Role: user.RoleAdmin}
	if err := fixture.service.RemoveFromPipeline(context.Background(), admin, record.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fixture.repo.count() != 0 {
		t.Fatal("expected record deleted")
	}
	if got := fixture.applicationStatus(t); got != application.StatusSubmitted {
		t.Fatalf("expected application reverted to submitted, got %s", got)
	}
}

func TestRemovePartialFailureNamesStep(t *testing.T) {
	fixture := newPipelineFixture(t)
	record, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	fixture.applications.updateStatusErr = common.NewError(common.CodeStoreFailure, "store unavailable", nil)

	admin := user.Actor{ID: common.NewUUID(), Role: user.RoleAdmin}
	err = fixture.service.RemoveFromPipeline(context.Background(), admin, record.ID)
	if !common.Is(err, common.CodePartialFailure) {
		t.Fatalf("expected partial_failure, got %v", err)
	}
	var appErr *common.Error
	if !errors.As(err, &appErr) || appErr.Step != "revert_application_status" {
		t.Fatalf("expected failed step to be named, got %+v", appErr)
	}
	if fixture.repo.count() != 0 {
		t.Fatal("expected record already deleted")
	}
}

func TestRemoveForeignRecordForbidden(t *testing.T) {
	fixture := newPipelineFixture(t)
	record, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	other := user.Actor{ID: common.NewUUID(), Role: user.RoleCompany}
	if err := fixture.service.RemoveFromPipeline(context.Background(), other, record.ID); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

// Withdrawing or rejecting an application deliberately leaves any pipeline
// record in place; cleanup is a separate, explicit action.
func TestWithdrawLeavesPipelineRecord(t *testing.T) {
	fixture := newPipelineFixture(t)
	if _, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := fixture.appService.Withdraw(context.Background(), fixture.applicationID, fixture.applicantID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fixture.repo.count() != 1 {
		t.Fatalf("expected pipeline record untouched, got %d", fixture.repo.count())
	}
}

func TestRejectLeavesPipelineRecord(t *testing.T) {
	fixture := newPipelineFixture(t)
	if _, err := fixture.service.AdvanceToInterviewing(context.Background(), fixture.companyID, fixture.opportunityID, fixture.applicantID, pipeline.InterviewDetails{Round: 1}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := fixture.appService.Reject(context.Background(), fixture.applicationID, fixture.companyID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fixture.repo.count() != 1 {
		t.Fatalf("expected pipeline record untouched, got %d", fixture.repo.count())
	}
}
