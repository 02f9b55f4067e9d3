package devbackend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrFormNotFound is returned for unknown form ids.
var ErrFormNotFound = errors.New("devbackend: form not found")

// FormRecord is one stored form.
type FormRecord struct {
	ID      int64
	Title   string
	Schema  []byte
	Version int
}

// SubmissionRecord is one stored submission.
type SubmissionRecord struct {
	ID     int64
	FormID int64
	Data   []byte
	Valid  bool
	Errors []byte
}

// Store persists forms and submissions in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the database at path. Use ":memory:" for an
// ephemeral store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("devbackend: open %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases shared and serialises writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS forms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		schema TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		form_id INTEGER NOT NULL REFERENCES forms(id),
		data TEXT NOT NULL,
		valid INTEGER NOT NULL DEFAULT 0,
		errors TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_form ON submissions(form_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("devbackend: migrate: %w", err)
	}
	return nil
}

// CreateForm stores a schema and returns its id.
func (s *Store) CreateForm(ctx context.Context, title string, schema []byte) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO forms (title, schema) VALUES (?, ?)`,
		title, string(schema),
	)
	if err != nil {
		return 0, fmt.Errorf("devbackend: insert form: %w", err)
	}
	return result.LastInsertId()
}

// Form loads one form.
func (s *Store) Form(ctx context.Context, id int64) (FormRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, schema, version FROM forms WHERE id = ?`, id,
	)
	var (
		form   FormRecord
		schema string
	)
	if err := row.Scan(&form.ID, &form.Title, &schema, &form.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FormRecord{}, ErrFormNotFound
		}
		return FormRecord{}, fmt.Errorf("devbackend: load form %d: %w", id, err)
	}
	form.Schema = []byte(schema)
	return form, nil
}

// AddSubmission stores a submission and returns its id.
func (s *Store) AddSubmission(ctx context.Context, formID int64, data []byte, valid bool, errs []byte) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (form_id, data, valid, errors) VALUES (?, ?, ?, ?)`,
		formID, string(data), valid, string(errs),
	)
	if err != nil {
		return 0, fmt.Errorf("devbackend: insert submission: %w", err)
	}
	return result.LastInsertId()
}

// Submissions lists the submissions of one form in insertion order.
func (s *Store) Submissions(ctx context.Context, formID int64) ([]SubmissionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, form_id, data, valid, errors FROM submissions WHERE form_id = ? ORDER BY id`, formID,
	)
	if err != nil {
		return nil, fmt.Errorf("devbackend: list submissions: %w", err)
	}
	defer rows.Close()

	var out []SubmissionRecord
	for rows.Next() {
		var (
			rec       SubmissionRecord
			data      string
			errorsRaw sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.FormID, &data, &rec.Valid, &errorsRaw); err != nil {
			return nil, fmt.Errorf("devbackend: scan submission: %w", err)
		}
		rec.Data = []byte(data)
		if errorsRaw.Valid {
			rec.Errors = []byte(errorsRaw.String)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
