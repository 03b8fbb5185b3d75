package models

import (
	"time"
)

// Lead — заявка/проспект из формы на сайте или с выставки.
// Статусы и допустимые переходы между ними живут в internal/workflow.
type Lead struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Contact    string     `json:"contact,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	EventType  string     `json:"event_type,omitempty"`
	EventDate  *time.Time `json:"event_date,omitempty"`
	Status     string     `json:"status"`
	CreatedBy  int        `json:"created_by"`
	AssignedTo int        `json:"assigned_to,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Clone возвращает независимую копию — наружу store отдаёт только копии.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	cp := *l
	if l.EventDate != nil {
		d := *l.EventDate
		cp.EventDate = &d
	}
	return &cp
}
