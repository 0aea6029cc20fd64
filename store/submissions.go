// Package store persists intake submissions in the intake_submissions table.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"
	"github.com/mbolis/tailor-intake/model"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no submission has the requested id.
var ErrNotFound = errors.New("submission not found")

const columns = `
	id, created_at,
	name, email, phone,
	user_type, type_answers,
	tone_style, restrictions, desired_outcome, ai_usage_level, additional_notes,
	status`

// Filter selects one page of submissions. An empty Status matches all.
type Filter struct {
	Status model.Status
	Offset int
	Limit  int
}

type Submissions struct {
	db    *sql.DB
	now   func() time.Time
	newID func() (string, error)
}

func NewSubmissions(db *sql.DB) *Submissions {
	return &Submissions{
		db:    db,
		now:   time.Now,
		newID: newUUID,
	}
}

func newUUID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create inserts sub with a fresh id, the current time and status "new".
func (s *Submissions) Create(ctx context.Context, sub model.Submission) (model.Submission, error) {
	id, err := s.newID()
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "db.insert_submission.id")
	}
	sub.ID = id
	sub.CreatedAt = s.now().UTC()
	sub.Status = model.StatusNew

	var typeAnswers []byte
	if sub.TypeAnswers != nil {
		typeAnswers, err = json.Marshal(sub.TypeAnswers)
		if err != nil {
			return model.Submission{}, errors.Wrap(err, "db.insert_submission.type_answers")
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO intake_submissions (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.CreatedAt,
		sub.Name, sub.Email, sub.Phone,
		sub.UserType, nullString(typeAnswers),
		sub.ToneStyle, sub.Restrictions, sub.DesiredOutcome, sub.AIUsageLevel, sub.AdditionalNotes,
		sub.Status,
	)
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "db.insert_submission")
	}
	return sub, nil
}

func (s *Submissions) Get(ctx context.Context, id string) (model.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+columns+`
		FROM intake_submissions
		WHERE id = ?`,
		id,
	)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Submission{}, ErrNotFound
	}
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "db.get_submission")
	}
	return sub, nil
}

// List returns one page of submissions, newest first, and the number of
// submissions matching the filter.
func (s *Submissions) List(ctx context.Context, f Filter) ([]model.Submission, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM intake_submissions
		WHERE ? = '' OR status = ?`,
		f.Status, f.Status,
	).Scan(&total)
	if err != nil {
		return nil, 0, errors.Wrap(err, "db.count_submissions")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+columns+`
		FROM intake_submissions
		WHERE ? = '' OR status = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`,
		f.Status, f.Status,
		f.Limit, f.Offset,
	)
	if err != nil {
		return nil, 0, errors.Wrap(err, "db.list_submissions")
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "db.list_submissions.scan")
		}
		submissions = append(submissions, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "db.list_submissions.rows")
	}
	return submissions, total, nil
}

// Counts tallies every submission in the table by status.
func (s *Submissions) Counts(ctx context.Context) (model.Counts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM intake_submissions
		GROUP BY status`)
	if err != nil {
		return model.Counts{}, errors.Wrap(err, "db.count_by_status")
	}
	defer rows.Close()

	var counts model.Counts
	for rows.Next() {
		var status model.Status
		var n int
		if err = rows.Scan(&status, &n); err != nil {
			return model.Counts{}, errors.Wrap(err, "db.count_by_status.scan")
		}
		counts.Add(status, n)
	}
	if err = rows.Err(); err != nil {
		return model.Counts{}, errors.Wrap(err, "db.count_by_status.rows")
	}
	return counts, nil
}

// SetStatus overwrites the status of one submission and returns the stored
// row. Setting the current status again is not an error.
func (s *Submissions) SetStatus(ctx context.Context, id string, status model.Status) (model.Submission, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE intake_submissions
		SET status = ?
		WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "db.update_submission_status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "db.update_submission_status.verify")
	}
	if n < 1 {
		return model.Submission{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Submissions) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM intake_submissions
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "db.delete_submission")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "db.delete_submission.verify")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (model.Submission, error) {
	var sub model.Submission
	var typeAnswers, tone, outcome, usage sql.NullString
	err := row.Scan(
		&sub.ID, &sub.CreatedAt,
		&sub.Name, &sub.Email, &sub.Phone,
		&sub.UserType, &typeAnswers,
		&tone, &sub.Restrictions, &outcome, &usage, &sub.AdditionalNotes,
		&sub.Status,
	)
	if err != nil {
		return model.Submission{}, err
	}
	sub.ToneStyle = model.ToneStyle(tone.String)
	sub.DesiredOutcome = outcome.String
	sub.AIUsageLevel = model.AIUsageLevel(usage.String)

	sub.TypeAnswers, err = model.DecodeAnswers(sub.UserType, []byte(typeAnswers.String))
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "parse_type_answers")
	}
	return sub, nil
}

func nullString(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
