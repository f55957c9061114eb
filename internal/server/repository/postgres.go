// Package repository is the reference backend's Postgres layer: assignments,
// their checklists, answers (idempotent upserts keyed by assignment+question)
// and the per-equipment reading history used for monotonicity checks.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

type AssignmentStatus string

const (
	StatusInProgress AssignmentStatus = "in_progress"
	StatusSubmitted  AssignmentStatus = "submitted"
)

type Assignment struct {
	ID            uuid.UUID
	EquipmentID   uuid.UUID
	InspectorName string
	InspectorRole string
	Status        AssignmentStatus
	StartedAt     time.Time
	SubmittedAt   *time.Time
}

// StoredAnswer is one persisted answer row plus its media references.
type StoredAnswer struct {
	QuestionID   uuid.UUID
	Value        string
	Comment      string
	UrgencyLevel int
	VoiceNoteURL string
	Media        map[domain.MediaKind]string
	UpdatedAt    time.Time
}

var ErrNotFound = errors.New("not found")

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetAssignment(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	query := `SELECT id, equipment_id, inspector_name, inspector_role, status, started_at, submitted_at
              FROM assignments WHERE id = $1`

	var a Assignment
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.EquipmentID, &a.InspectorName, &a.InspectorRole, &a.Status, &a.StartedAt, &a.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("assignment %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

// GetPeerAssignment returns the counterpart inspector's assignment on the
// same equipment (mechanical vs electrical), or ErrNotFound when no peer has
// an assignment there.
func (r *PostgresRepository) GetPeerAssignment(ctx context.Context, a *Assignment) (*Assignment, error) {
	query := `SELECT id, equipment_id, inspector_name, inspector_role, status, started_at, submitted_at
              FROM assignments
              WHERE equipment_id = $1 AND id <> $2
              ORDER BY started_at DESC LIMIT 1`

	var p Assignment
	err := r.db.QueryRow(ctx, query, a.EquipmentID, a.ID).Scan(&p.ID, &p.EquipmentID, &p.InspectorName, &p.InspectorRole, &p.Status, &p.StartedAt, &p.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) GetQuestions(ctx context.Context, assignmentID uuid.UUID) ([]domain.ChecklistQuestion, error) {
	query := `SELECT id, text_en, text_ar, answer_type, rule_kind, rule_min, rule_max,
                     critical_failure, assembly, part, order_index
              FROM questions WHERE assignment_id = $1 ORDER BY order_index ASC`

	rows, err := r.db.Query(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.ChecklistQuestion
	for rows.Next() {
		var q domain.ChecklistQuestion
		var ruleKind *string
		var ruleMin, ruleMax *float64
		err := rows.Scan(&q.ID, &q.TextEn, &q.TextAr, &q.AnswerType, &ruleKind, &ruleMin, &ruleMax,
			&q.CriticalFailure, &q.Assembly, &q.Part, &q.OrderIndex)
		if err != nil {
			return nil, err
		}
		if ruleKind != nil {
			rule := &domain.NumericRule{Kind: domain.NumericRuleKind(*ruleKind)}
			if ruleMin != nil {
				rule.MinValue = *ruleMin
			}
			if ruleMax != nil {
				rule.MaxValue = *ruleMax
			}
			q.NumericRule = rule
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *PostgresRepository) GetAnswers(ctx context.Context, assignmentID uuid.UUID) ([]StoredAnswer, error) {
	query := `SELECT question_id, value, comment, urgency_level, voice_note_url, updated_at
              FROM answers WHERE assignment_id = $1`

	rows, err := r.db.Query(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byQuestion := make(map[uuid.UUID]*StoredAnswer)
	var answers []*StoredAnswer
	for rows.Next() {
		var a StoredAnswer
		if err := rows.Scan(&a.QuestionID, &a.Value, &a.Comment, &a.UrgencyLevel, &a.VoiceNoteURL, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Media = make(map[domain.MediaKind]string)
		byQuestion[a.QuestionID] = &a
		answers = append(answers, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mediaQuery := `SELECT question_id, kind, remote_url FROM answer_media WHERE assignment_id = $1`
	mrows, err := r.db.Query(ctx, mediaQuery, assignmentID)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()

	for mrows.Next() {
		var qid uuid.UUID
		var kind, url string
		if err := mrows.Scan(&qid, &kind, &url); err != nil {
			return nil, err
		}
		if a, ok := byQuestion[qid]; ok {
			a.Media[domain.MediaKind(kind)] = url
		}
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}

	out := make([]StoredAnswer, 0, len(answers))
	for _, a := range answers {
		out = append(out, *a)
	}
	return out, nil
}

// UpsertAnswer persists one answer, keyed by (assignment_id, question_id).
// Calling it twice with the same payload is a no-op beyond updated_at.
func (r *PostgresRepository) UpsertAnswer(ctx context.Context, assignmentID uuid.UUID, a StoredAnswer) error {
	query := `INSERT INTO answers (assignment_id, question_id, value, comment, urgency_level, voice_note_url, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, now())
              ON CONFLICT (assignment_id, question_id)
              DO UPDATE SET value = $3, comment = $4, urgency_level = $5, voice_note_url = $6, updated_at = now()`

	_, err := r.db.Exec(ctx, query, assignmentID, a.QuestionID, a.Value, a.Comment, a.UrgencyLevel, a.VoiceNoteURL)
	return err
}

// AddAnswerMedia records the canonical remote URL for one slot, replacing any
// earlier upload of the same kind (one slot per kind).
func (r *PostgresRepository) AddAnswerMedia(ctx context.Context, assignmentID, questionID uuid.UUID, kind domain.MediaKind, remoteURL string) error {
	query := `INSERT INTO answer_media (assignment_id, question_id, kind, remote_url)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (assignment_id, question_id, kind)
              DO UPDATE SET remote_url = $4`

	_, err := r.db.Exec(ctx, query, assignmentID, questionID, kind, remoteURL)
	return err
}

// GetLastReading returns the last accepted reading for the equipment and
// question, or nil when none was recorded yet.
func (r *PostgresRepository) GetLastReading(ctx context.Context, equipmentID, questionID uuid.UUID) (*float64, error) {
	query := `SELECT last_reading FROM equipment_readings WHERE equipment_id = $1 AND question_id = $2`

	var reading float64
	err := r.db.QueryRow(ctx, query, equipmentID, questionID).Scan(&reading)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *PostgresRepository) SetLastReading(ctx context.Context, equipmentID, questionID uuid.UUID, reading float64) error {
	query := `INSERT INTO equipment_readings (equipment_id, question_id, last_reading, recorded_at)
              VALUES ($1, $2, $3, now())
              ON CONFLICT (equipment_id, question_id)
              DO UPDATE SET last_reading = $3, recorded_at = now()`

	_, err := r.db.Exec(ctx, query, equipmentID, questionID, reading)
	return err
}

// CountUnanswered is the server-side readiness check backing submit.
func (r *PostgresRepository) CountUnanswered(ctx context.Context, assignmentID uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM questions q
              LEFT JOIN answers a ON a.assignment_id = q.assignment_id AND a.question_id = q.id
              WHERE q.assignment_id = $1 AND (a.value IS NULL OR a.value = '')`

	var n int
	err := r.db.QueryRow(ctx, query, assignmentID).Scan(&n)
	return n, err
}

func (r *PostgresRepository) MarkSubmitted(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE assignments SET status = $1, submitted_at = now() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, StatusSubmitted, id)
	return err
}

// CreateAssignment and CreateQuestion back cmd/seed.
func (r *PostgresRepository) CreateAssignment(ctx context.Context, a *Assignment) error {
	query := `INSERT INTO assignments (id, equipment_id, inspector_name, inspector_role, status, started_at)
              VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query, a.ID, a.EquipmentID, a.InspectorName, a.InspectorRole, a.Status, a.StartedAt)
	return err
}

func (r *PostgresRepository) CreateQuestion(ctx context.Context, assignmentID uuid.UUID, q *domain.ChecklistQuestion) error {
	query := `INSERT INTO questions (id, assignment_id, text_en, text_ar, answer_type, rule_kind, rule_min, rule_max,
                                     critical_failure, assembly, part, order_index)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	var ruleKind *string
	var ruleMin, ruleMax *float64
	if q.NumericRule != nil {
		k := string(q.NumericRule.Kind)
		ruleKind = &k
		ruleMin = &q.NumericRule.MinValue
		ruleMax = &q.NumericRule.MaxValue
	}
	_, err := r.db.Exec(ctx, query, q.ID, assignmentID, q.TextEn, q.TextAr, q.AnswerType,
		ruleKind, ruleMin, ruleMax, q.CriticalFailure, q.Assembly, q.Part, q.OrderIndex)
	return err
}
