package store

import (
	"context"
	"errors"
	"sync"

	"eventcrm/internal/crm"
	"eventcrm/internal/models"
)

// FallbackError — текст для пользователя, когда сервер не прислал своего.
const FallbackError = "failed to update lead status"

// StatusUpdater — то единственное, что store хочет от CRM API.
type StatusUpdater interface {
	UpdateLeadStatus(ctx context.Context, id, status string) (*models.Lead, error)
}

// UpdateResult — исход оптимистичного обновления.
// OK=false всегда несёт сообщение, пригодное для показа пользователю.
type UpdateResult struct {
	OK  bool
	Err string
}

type entry struct {
	lead *models.Lead
	// version растёт при каждой записи статуса; откат/коммит применяются
	// только если с момента оптимистичной записи её никто не перебил.
	version uint64
	pending bool
}

// LeadStore — локальный кэш лидов поверх удалённого CRM API.
// Вся мутация проходит через один путь под мьютексом; наружу
// отдаются только копии.
type LeadStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	updater StatusUpdater
}

func NewLeadStore(updater StatusUpdater) *LeadStore {
	return &LeadStore{
		entries: make(map[string]*entry),
		updater: updater,
	}
}

// Replace полностью заменяет коллекцию (рефреш с сервера).
// Флаги pending при этом сбрасываются: разрешение зависшего запроса по
// сменившейся записи отбрасывается версионной защитой.
func (s *LeadStore) Replace(leads []*models.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry, len(leads))
	s.order = s.order[:0]
	for _, l := range leads {
		if l == nil || l.ID == "" {
			continue
		}
		s.entries[l.ID] = &entry{lead: l.Clone()}
		s.order = append(s.order, l.ID)
	}
}

func (s *LeadStore) Get(id string) (*models.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.lead.Clone(), true
}

func (s *LeadStore) List() []*models.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Lead, 0, len(s.order))
	for _, id := range s.order {
		if e, ok := s.entries[id]; ok {
			out = append(out, e.lead.Clone())
		}
	}
	return out
}

// ByStatus — чистая производная выборка: колонка доски это просто
// фильтр коллекции по статусу, своего состояния у колонок нет.
func (s *LeadStore) ByStatus(status string) []*models.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Lead
	for _, id := range s.order {
		if e, ok := s.entries[id]; ok && e.lead.Status == status {
			out = append(out, e.lead.Clone())
		}
	}
	return out
}

// Pending — висит ли по лиду незавершённое обновление.
func (s *LeadStore) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return ok && e.pending
}

// UpdateStatusOptimistic меняет статус сразу, до ответа сервера, и
// откатывает на снимок при неудаче. Обновления разных лидов полностью
// независимы; гонку двух обновлений одного лида разруливает версия
// записи — устаревшее разрешение не трогает состояние.
func (s *LeadStore) UpdateStatusOptimistic(ctx context.Context, id, newStatus string) UpdateResult {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return UpdateResult{Err: "lead not found"}
	}
	if e.lead.Status == newStatus {
		// переход в тот же статус — не операция, в сеть не ходим
		s.mu.Unlock()
		return UpdateResult{OK: true}
	}

	snapshot := e.lead.Status
	e.lead.Status = newStatus // оптимистичная запись, UI видит её сразу
	e.version++
	token := e.version
	e.pending = true
	s.mu.Unlock()

	updated, err := s.updater.UpdateLeadStatus(ctx, id, newStatus)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.entries[id]
	if !ok || cur != e || cur.version != token {
		// состояние уже перезаписано (рефреш или более позднее обновление);
		// наш коммит/откат устарел и отбрасывается
		return settle(updated != nil && err == nil, err)
	}
	cur.pending = false
	if err != nil {
		cur.lead.Status = snapshot
		cur.version++
		return settle(false, err)
	}
	if updated != nil {
		status := updated.Status
		cur.lead = updated.Clone()
		if status == "" {
			cur.lead.Status = newStatus
		}
	}
	return settle(true, nil)
}

func settle(ok bool, err error) UpdateResult {
	if ok {
		return UpdateResult{OK: true}
	}
	var rej *crm.RejectionError
	if errors.As(err, &rej) && rej.Message != "" {
		return UpdateResult{Err: rej.Message}
	}
	return UpdateResult{Err: FallbackError}
}
