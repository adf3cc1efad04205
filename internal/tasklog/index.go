package tasklog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const defaultLimit = 20

// Fixed width so timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Index is the SQLite index of task logs across all projects.
type Index struct {
	db *sql.DB
}

// Record is one indexed task.
type Record struct {
	Project    string
	TaskNumber int
	SessionID  string
	Prompt     string
	Summary    string
	Success    bool
	DurationMs *uint64
	CostUSD    *float64
	Timestamp  time.Time
	Path       string
}

// OpenIndex opens (creating if needed) the index database at dbPath.
func OpenIndex(dbPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize index schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

// Insert adds a written task log to the index. Re-indexing the same path
// replaces the earlier row.
func (x *Index) Insert(project string, e *Entry, path string) error {
	var duration sql.NullInt64
	if e.DurationMs != nil {
		duration = sql.NullInt64{Int64: int64(*e.DurationMs), Valid: true}
	}
	var cost sql.NullFloat64
	if e.CostUSD != nil {
		cost = sql.NullFloat64{Float64: *e.CostUSD, Valid: true}
	}

	_, err := x.db.Exec(`
		INSERT OR REPLACE INTO tasks
			(project, task_number, session_id, prompt, summary, success,
			 duration_ms, cost_usd, created_at, path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		project, e.TaskNumber, e.SessionID, e.Prompt, e.Summary, e.Success,
		duration, cost, e.Timestamp.UTC().Format(timeFormat), path,
	)
	if err != nil {
		return fmt.Errorf("failed to index task %d: %w", e.TaskNumber, err)
	}
	return nil
}

// Recent returns the newest tasks for a project, newest first.
func (x *Index) Recent(project string, limit int) ([]Record, error) {
	return x.query(`WHERE project = ?`, []any{project}, limit)
}

// Search returns tasks whose prompt or summary contains text.
func (x *Index) Search(project, text string, limit int) ([]Record, error) {
	pattern := "%" + escapeLike(text) + "%"
	return x.query(
		`WHERE project = ? AND (prompt LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\')`,
		[]any{project, pattern, pattern},
		limit,
	)
}

func (x *Index) query(where string, args []any, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	q := `
		SELECT project, task_number, session_id, prompt, summary, success,
		       duration_ms, cost_usd, created_at, path
		FROM tasks ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
	args = append(args, limit)

	rows, err := x.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var duration sql.NullInt64
		var cost sql.NullFloat64
		var createdAt string

		if err := rows.Scan(
			&r.Project, &r.TaskNumber, &r.SessionID, &r.Prompt, &r.Summary, &r.Success,
			&duration, &cost, &createdAt, &r.Path,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		if duration.Valid {
			d := uint64(duration.Int64)
			r.DurationMs = &d
		}
		if cost.Valid {
			c := cost.Float64
			r.CostUSD = &c
		}
		if t, err := time.Parse(timeFormat, createdAt); err != nil {
			slog.Warn("tasklog: bad timestamp in index", "path", r.Path, "error", err)
		} else {
			r.Timestamp = t
		}

		records = append(records, r)
	}
	return records, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
