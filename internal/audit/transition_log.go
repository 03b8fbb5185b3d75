package audit

import (
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
)

// Исход попытки перехода, как он записывается в журнал.
const (
	OutcomeApplied    = "applied"
	OutcomeRejected   = "rejected"
	OutcomeRolledBack = "rolled_back"
)

type TransitionRecord struct {
	ID         string    `json:"id"`
	LeadID     string    `json:"lead_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message,omitempty"`
	ActorID    int       `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type TransitionLogRepository struct {
	db *sql.DB
}

func NewTransitionLogRepository(db *sql.DB) *TransitionLogRepository {
	if db == nil {
		log.Fatalf("received nil database connection")
	}
	return &TransitionLogRepository{db: db}
}

func (r *TransitionLogRepository) Record(rec *TransitionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	const query = `
		INSERT INTO lead_status_transitions (id, lead_id, from_status, to_status, outcome, message, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(query, rec.ID, rec.LeadID, rec.FromStatus, rec.ToStatus, rec.Outcome, rec.Message, rec.ActorID, rec.CreatedAt)
	return err
}

func (r *TransitionLogRepository) ListByLead(leadID string, limit, offset int) ([]*TransitionRecord, error) {
	const query = `
		SELECT id, lead_id, from_status, to_status, outcome, message, actor_id, created_at
		FROM lead_status_transitions
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(query, leadID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*TransitionRecord
	for rows.Next() {
		var rec TransitionRecord
		if err := rows.Scan(&rec.ID, &rec.LeadID, &rec.FromStatus, &rec.ToStatus, &rec.Outcome, &rec.Message, &rec.ActorID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *TransitionLogRepository) CountByOutcome(outcome string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM lead_status_transitions WHERE outcome = $1`, outcome).Scan(&count)
	return count, err
}
