package notify

import (
	"log"

	"eventcrm/internal/models"
)

// Notifier получает лид, дошедший до финального статуса. Все реализации
// best-effort: их ошибки логируются и никогда не влияют на исход доски.
type Notifier interface {
	LeadStatusChanged(lead *models.Lead, fromStatus string) error
}

// Multi рассылает по всем каналам сразу.
type Multi []Notifier

func (m Multi) LeadStatusChanged(lead *models.Lead, fromStatus string) error {
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.LeadStatusChanged(lead, fromStatus); err != nil {
			log.Printf("[notify][err] %v", err)
		}
	}
	return nil
}
