package workflow

import "strings"

const (
	StatusNew           = "new"
	StatusFollowUp      = "follow_up"
	StatusNotInterested = "not_interested"
	StatusQuotationSent = "quotation_sent"
	StatusConverted     = "converted"
	StatusLost          = "lost"
)

// Statuses — порядок колонок на доске.
var Statuses = []string{
	StatusNew,
	StatusFollowUp,
	StatusQuotationSent,
	StatusConverted,
	StatusNotInterested,
	StatusLost,
}

// Допустимые переходы статусов лида. Таблица статическая и только
// советует клиенту: сервер всё равно проверяет переход сам.
// NB: переход в тот же статус здесь не моделируется — вызывающий код
// отсекает from == to до обращения к таблице.
var LeadTransitions = map[string]map[string]bool{
	StatusNew:           {StatusFollowUp: true, StatusNotInterested: true},
	StatusFollowUp:      {StatusNotInterested: true, StatusQuotationSent: true, StatusConverted: true, StatusLost: true},
	StatusQuotationSent: {StatusFollowUp: true, StatusConverted: true, StatusLost: true},
	StatusNotInterested: {}, // финалка
	StatusConverted:     {}, // финалка
	StatusLost:          {}, // финалка
}

func IsValidStatus(s string) bool {
	_, ok := LeadTransitions[s]
	return ok
}

func CanTransition(from, to string) bool {
	nexts, ok := LeadTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}

// IsTerminal — статус без исходящих переходов.
func IsTerminal(status string) bool {
	nexts, ok := LeadTransitions[status]
	return ok && len(nexts) == 0
}

// AllowedTargets возвращает цели перехода в порядке колонок доски.
func AllowedTargets(from string) []string {
	nexts, ok := LeadTransitions[from]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(nexts))
	for _, s := range Statuses {
		if nexts[s] {
			out = append(out, s)
		}
	}
	return out
}

// Label — человекочитаемый вид статуса для уведомлений ("follow up").
func Label(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
