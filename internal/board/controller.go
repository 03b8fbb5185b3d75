package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"eventcrm/internal/store"
	"eventcrm/internal/workflow"
)

// Состояние карточки на доске.
type CardState int

const (
	StateIdle CardState = iota
	StateDragging
	StateUpdating
)

func (s CardState) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateUpdating:
		return "updating"
	default:
		return "idle"
	}
}

var (
	ErrLeadNotFound = errors.New("lead not found")
	ErrCardBusy     = errors.New("lead update already in flight")
)

// Исход обработки броска карточки.
type Outcome int

const (
	OutcomeMoved Outcome = iota
	OutcomeNoOp
	OutcomeNotFound
	OutcomeRejected // отсечено таблицей переходов, запрос не отправлялся
	OutcomeFailed   // сервер или сеть отказали, статус откатили
)

type MoveResult struct {
	Outcome Outcome
	From    string
	To      string
	Notice  string // текст для пользователя, пустой при успехе
}

// Notice — уведомление пользователю (тост в браузерном слое).
type Notice struct {
	LeadID  string
	Message string
}

type NoticeFunc func(Notice)

// Controller переводит жесты drag-and-drop в проверенные смены статуса.
// Сам он не хранит "ожидаемый статус" — единственный источник правды,
// который рендерит UI, это store с его оптимистичной записью и откатом;
// состояние карточки здесь только гейтит интерактивность.
type Controller struct {
	mu     sync.Mutex
	cards  map[string]CardState
	store  *store.LeadStore
	notify NoticeFunc
}

func NewController(st *store.LeadStore, notify NoticeFunc) *Controller {
	if notify == nil {
		notify = func(Notice) {}
	}
	return &Controller{
		cards:  make(map[string]CardState),
		store:  st,
		notify: notify,
	}
}

func (c *Controller) State(leadID string) CardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cards[leadID]
}

// OnDragStart — начало перетаскивания. Карточка с незавершённым
// обновлением не перетаскивается.
func (c *Controller) OnDragStart(leadID string) error {
	if _, ok := c.store.Get(leadID); !ok {
		return ErrLeadNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cards[leadID] == StateUpdating {
		return ErrCardBusy
	}
	c.cards[leadID] = StateDragging
	return nil
}

// OnDragCancel — бросок мимо колонок, карточка возвращается на место.
func (c *Controller) OnDragCancel(leadID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cards[leadID] == StateDragging {
		c.setLocked(leadID, StateIdle)
	}
}

// OnDrop — карточку отпустили над колонкой targetStatus.
// Порядок проверок важен: same-status отсекается до таблицы переходов,
// запрещённый переход отсекается до сети.
func (c *Controller) OnDrop(ctx context.Context, leadID, targetStatus string) MoveResult {
	lead, ok := c.store.Get(leadID)
	if !ok {
		c.setState(leadID, StateIdle)
		return MoveResult{Outcome: OutcomeNotFound, To: targetStatus, Notice: "lead not found"}
	}
	from := lead.Status

	if targetStatus == "" || targetStatus == from {
		c.setState(leadID, StateIdle)
		return MoveResult{Outcome: OutcomeNoOp, From: from, To: from}
	}

	if !workflow.CanTransition(from, targetStatus) {
		c.setState(leadID, StateIdle)
		msg := fmt.Sprintf("cannot move lead from %q to %q",
			workflow.Label(from), workflow.Label(targetStatus))
		c.notify(Notice{LeadID: leadID, Message: msg})
		return MoveResult{Outcome: OutcomeRejected, From: from, To: targetStatus, Notice: msg}
	}

	c.setState(leadID, StateUpdating)
	res := c.store.UpdateStatusOptimistic(ctx, leadID, targetStatus)
	c.setState(leadID, StateIdle)

	if !res.OK {
		msg := res.Err
		if msg == "" {
			msg = store.FallbackError
		}
		c.notify(Notice{LeadID: leadID, Message: msg})
		return MoveResult{Outcome: OutcomeFailed, From: from, To: targetStatus, Notice: msg}
	}
	return MoveResult{Outcome: OutcomeMoved, From: from, To: targetStatus}
}

func (c *Controller) setState(leadID string, st CardState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(leadID, st)
}

func (c *Controller) setLocked(leadID string, st CardState) {
	if st == StateIdle {
		delete(c.cards, leadID) // карта не растёт от мёртвых карточек
		return
	}
	c.cards[leadID] = st
}
