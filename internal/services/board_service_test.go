package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcrm/internal/audit"
	"eventcrm/internal/board"
	"eventcrm/internal/crm"
	"eventcrm/internal/models"
	"eventcrm/internal/queue"
	"eventcrm/internal/store"
	"eventcrm/internal/workflow"
)

type fakeCRM struct {
	mu     sync.Mutex
	leads  []*models.Lead
	fail   error
	update func(id, status string) (*models.Lead, error)
}

func (f *fakeCRM) ListLeads(ctx context.Context) ([]*models.Lead, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return f.leads, nil
}

func (f *fakeCRM) UpdateLeadStatus(ctx context.Context, id, status string) (*models.Lead, error) {
	if f.update != nil {
		return f.update(id, status)
	}
	return &models.Lead{ID: id, Status: status}, nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	recs []*audit.TransitionRecord
}

func (f *fakeRecorder) Record(rec *audit.TransitionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, rec)
	return nil
}

type fakeProducer struct {
	mu       sync.Mutex
	payloads []queue.StatusChangedPayload
}

func (f *fakeProducer) PublishStatusChanged(ctx context.Context, payload queue.StatusChangedPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeNotifier) LeadStatusChanged(lead *models.Lead, fromStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lead.ID)
	return nil
}

func newService(t *testing.T, crmClient *fakeCRM) (*BoardService, *fakeRecorder, *fakeProducer, *fakeNotifier) {
	t.Helper()
	st := store.NewLeadStore(crmClient)
	ctrl := board.NewController(st, nil)
	svc := NewBoardService(st, ctrl, crmClient)

	rec := &fakeRecorder{}
	prod := &fakeProducer{}
	ntf := &fakeNotifier{}
	svc.Recorder = rec
	svc.Events = prod
	svc.Notifier = ntf

	require.NoError(t, svc.Refresh(context.Background()))
	return svc, rec, prod, ntf
}

func seedCRM() *fakeCRM {
	return &fakeCRM{leads: []*models.Lead{
		{ID: "l1", Title: "Wedding at Riverside", Status: workflow.StatusNew, AssignedTo: 7},
		{ID: "l2", Title: "Corporate offsite", Status: workflow.StatusFollowUp, AssignedTo: 7},
	}}
}

func TestRefreshPopulatesColumns(t *testing.T) {
	svc, _, _, _ := newService(t, seedCRM())

	cols := svc.Columns()
	require.Len(t, cols, len(workflow.Statuses))
	assert.Equal(t, workflow.StatusNew, cols[0].Status)
	assert.Len(t, cols[0].Leads, 1)
	assert.Equal(t, "new", cols[0].Label)
	assert.Equal(t, "follow up", cols[1].Label)
}

func TestMoveLeadRecordsAndPublishes(t *testing.T) {
	svc, rec, prod, ntf := newService(t, seedCRM())

	res := svc.MoveLead(context.Background(), 7, "l1", workflow.StatusFollowUp)
	require.Equal(t, board.OutcomeMoved, res.Outcome)

	require.Len(t, rec.recs, 1)
	assert.Equal(t, audit.OutcomeApplied, rec.recs[0].Outcome)
	assert.Equal(t, workflow.StatusNew, rec.recs[0].FromStatus)
	assert.Equal(t, workflow.StatusFollowUp, rec.recs[0].ToStatus)
	assert.Equal(t, 7, rec.recs[0].ActorID)

	require.Len(t, prod.payloads, 1)
	assert.Equal(t, "l1", prod.payloads[0].LeadID)

	// follow_up не финалка — уведомлений нет
	assert.Empty(t, ntf.calls)
}

func TestMoveLeadRejectedIsRecordedWithoutEvent(t *testing.T) {
	svc, rec, prod, _ := newService(t, seedCRM())

	res := svc.MoveLead(context.Background(), 7, "l1", workflow.StatusConverted)
	require.Equal(t, board.OutcomeRejected, res.Outcome)

	require.Len(t, rec.recs, 1)
	assert.Equal(t, audit.OutcomeRejected, rec.recs[0].Outcome)
	assert.NotEmpty(t, rec.recs[0].Message)
	assert.Empty(t, prod.payloads, "rejected moves never produce events")
}

func TestMoveLeadRollbackIsRecorded(t *testing.T) {
	crmClient := seedCRM()
	crmClient.update = func(id, status string) (*models.Lead, error) {
		return nil, &crm.RejectionError{Message: "insufficient permissions"}
	}
	svc, rec, prod, _ := newService(t, crmClient)

	res := svc.MoveLead(context.Background(), 7, "l2", workflow.StatusQuotationSent)
	require.Equal(t, board.OutcomeFailed, res.Outcome)

	require.Len(t, rec.recs, 1)
	assert.Equal(t, audit.OutcomeRolledBack, rec.recs[0].Outcome)
	assert.Equal(t, "insufficient permissions", rec.recs[0].Message)
	assert.Empty(t, prod.payloads)
}

func TestMoveLeadToTerminalNotifies(t *testing.T) {
	svc, _, _, ntf := newService(t, seedCRM())

	res := svc.MoveLead(context.Background(), 7, "l2", workflow.StatusConverted)
	require.Equal(t, board.OutcomeMoved, res.Outcome)

	require.Len(t, ntf.calls, 1)
	assert.Equal(t, "l2", ntf.calls[0])
}

func TestMoveLeadNoOpIsNotRecorded(t *testing.T) {
	svc, rec, _, _ := newService(t, seedCRM())

	res := svc.MoveLead(context.Background(), 7, "l1", workflow.StatusNew)
	require.Equal(t, board.OutcomeNoOp, res.Outcome)
	assert.Empty(t, rec.recs)
}
