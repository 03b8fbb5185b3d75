package services

import (
	"context"
	"log"
	"time"

	"eventcrm/internal/audit"
	"eventcrm/internal/board"
	"eventcrm/internal/models"
	"eventcrm/internal/notify"
	"eventcrm/internal/queue"
	"eventcrm/internal/store"
	"eventcrm/internal/workflow"
)

// LeadLister — что сервису нужно от CRM API помимо store.
type LeadLister interface {
	ListLeads(ctx context.Context) ([]*models.Lead, error)
}

// TransitionRecorder — журнал попыток перехода; может быть nil.
type TransitionRecorder interface {
	Record(rec *audit.TransitionRecord) error
}

// BoardService — оркестрация канбан-доски: рефреш кэша, перемещения
// карточек, журнал, события и уведомления. Events/Recorder/Notifier
// опциональны и best-effort: их сбои не меняют исход перемещения.
type BoardService struct {
	Store    *store.LeadStore
	Ctrl     *board.Controller
	CRM      LeadLister
	Recorder TransitionRecorder
	Events   queue.ProducerInterface
	Notifier notify.Notifier
}

func NewBoardService(st *store.LeadStore, ctrl *board.Controller, crmClient LeadLister) *BoardService {
	return &BoardService{Store: st, Ctrl: ctrl, CRM: crmClient}
}

// Refresh перечитывает лиды с сервера и целиком заменяет кэш.
func (s *BoardService) Refresh(ctx context.Context) error {
	leads, err := s.CRM.ListLeads(ctx)
	if err != nil {
		return err
	}
	s.Store.Replace(leads)
	return nil
}

// Column — колонка доски: производная выборка кэша по статусу.
type Column struct {
	Status string         `json:"status"`
	Label  string         `json:"label"`
	Leads  []*models.Lead `json:"leads"`
}

func (s *BoardService) Columns() []Column {
	out := make([]Column, 0, len(workflow.Statuses))
	for _, st := range workflow.Statuses {
		leads := s.Store.ByStatus(st)
		if leads == nil {
			leads = []*models.Lead{}
		}
		out = append(out, Column{Status: st, Label: workflow.Label(st), Leads: leads})
	}
	return out
}

func (s *BoardService) Lead(id string) (*models.Lead, bool) {
	return s.Store.Get(id)
}

// MoveLead — бросок карточки лида на колонку toStatus от имени actorID.
func (s *BoardService) MoveLead(ctx context.Context, actorID int, leadID, toStatus string) board.MoveResult {
	res := s.Ctrl.OnDrop(ctx, leadID, toStatus)

	s.record(actorID, leadID, res)

	if res.Outcome == board.OutcomeMoved {
		s.publish(ctx, actorID, leadID, res)
		s.notifyTerminal(leadID, res)
	}
	return res
}

func (s *BoardService) record(actorID int, leadID string, res board.MoveResult) {
	if s.Recorder == nil {
		return
	}
	var outcome string
	switch res.Outcome {
	case board.OutcomeMoved:
		outcome = audit.OutcomeApplied
	case board.OutcomeRejected:
		outcome = audit.OutcomeRejected
	case board.OutcomeFailed:
		outcome = audit.OutcomeRolledBack
	default:
		return // no-op и not-found в журнал не пишем
	}
	rec := &audit.TransitionRecord{
		LeadID:     leadID,
		FromStatus: res.From,
		ToStatus:   res.To,
		Outcome:    outcome,
		Message:    res.Notice,
		ActorID:    actorID,
	}
	if err := s.Recorder.Record(rec); err != nil {
		log.Printf("[audit][err] record transition: %v", err)
	}
}

func (s *BoardService) publish(ctx context.Context, actorID int, leadID string, res board.MoveResult) {
	if s.Events == nil {
		return
	}
	payload := queue.StatusChangedPayload{
		LeadID:     leadID,
		FromStatus: res.From,
		ToStatus:   res.To,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	}
	if err := s.Events.PublishStatusChanged(ctx, payload); err != nil {
		log.Printf("[events][err] publish status-changed: %v", err)
	}
}

func (s *BoardService) notifyTerminal(leadID string, res board.MoveResult) {
	if s.Notifier == nil || !workflow.IsTerminal(res.To) {
		return
	}
	lead, ok := s.Store.Get(leadID)
	if !ok {
		return
	}
	if err := s.Notifier.LeadStatusChanged(lead, res.From); err != nil {
		log.Printf("[notify][err] %v", err)
	}
}
