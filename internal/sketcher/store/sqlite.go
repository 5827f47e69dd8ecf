package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rotisserie/eris"

	"floorplan-sketcher/internal/sketcher/models"
)

//go:embed migrations/001_init_sketcher.sql
var initMigration string

var (
	ErrProjectNotFound = eris.New("store: project not found")
	ErrVersionNotFound = eris.New("store: version not found")
	ErrEmptyName       = eris.New("store: project name is required")
)

type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Version struct {
	Version   int       `json:"version"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ============================================================
// SQLite Repository
// ============================================================

// Repository persists projects as versioned JSON snapshots. Every save
// appends a snapshot; nothing is overwritten.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Init applies the schema.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, initMigration); err != nil {
		return eris.Wrap(err, "apply migration")
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Create stores version 1 of a new project.
func (r *Repository) Create(ctx context.Context, project models.Project) (models.Project, error) {
	if project.Name == "" {
		return models.Project{}, ErrEmptyName
	}

	data, err := json.Marshal(project)
	if err != nil {
		return models.Project{}, eris.Wrap(err, "encode project")
	}
	now := r.stamp()

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO projects (id, name, version, created_at, updated_at)
            VALUES (?, ?, 1, ?, ?)
        `, project.ID, project.Name, now, now); err != nil {
			return eris.Wrapf(err, "insert project %s", project.ID)
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO project_snapshots (project_id, version, message, data, created_at)
            VALUES (?, 1, 'created', ?, ?)
        `, project.ID, string(data), now); err != nil {
			return eris.Wrapf(err, "insert snapshot for %s", project.ID)
		}
		return nil
	})
	if err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// Save appends a snapshot and returns its version number.
func (r *Repository) Save(ctx context.Context, project models.Project, message string) (int, error) {
	data, err := json.Marshal(project)
	if err != nil {
		return 0, eris.Wrap(err, "encode project")
	}
	now := r.stamp()

	var version int
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT version FROM projects WHERE id = ?`, project.ID)
		if err := row.Scan(&version); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return eris.Wrapf(ErrProjectNotFound, "project %s", project.ID)
			}
			return eris.Wrap(err, "read version")
		}
		version++

		if _, err := tx.ExecContext(ctx, `
            INSERT INTO project_snapshots (project_id, version, message, data, created_at)
            VALUES (?, ?, ?, ?, ?)
        `, project.ID, version, message, string(data), now); err != nil {
			return eris.Wrap(err, "insert snapshot")
		}

		name := project.Name
		if _, err := tx.ExecContext(ctx, `
            UPDATE projects SET version = ?, name = COALESCE(NULLIF(?, ''), name), updated_at = ?
            WHERE id = ?
        `, version, name, now, project.ID); err != nil {
			return eris.Wrap(err, "bump version")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Load returns the latest snapshot.
func (r *Repository) Load(ctx context.Context, id string) (models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT s.data
        FROM project_snapshots s
        JOIN projects p ON p.id = s.project_id AND p.version = s.version
        WHERE p.id = ?
    `, id)
	return scanProject(row, eris.Wrapf(ErrProjectNotFound, "project %s", id))
}

func (r *Repository) LoadVersion(ctx context.Context, id string, version int) (models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT data FROM project_snapshots WHERE project_id = ? AND version = ?
    `, id, version)
	return scanProject(row, eris.Wrapf(ErrVersionNotFound, "project %s version %d", id, version))
}

func (r *Repository) ListVersions(ctx context.Context, id string) ([]Version, error) {
	if _, err := r.summary(ctx, id); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT version, message, created_at
        FROM project_snapshots
        WHERE project_id = ?
        ORDER BY version DESC
    `, id)
	if err != nil {
		return nil, eris.Wrap(err, "query versions")
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		var created string
		if err := rows.Scan(&v.Version, &v.Message, &created); err != nil {
			return nil, eris.Wrap(err, "scan version")
		}
		v.CreatedAt = parseStamp(created)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate versions")
	}
	return out, nil
}

func (r *Repository) ListProjects(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, version, updated_at FROM projects ORDER BY updated_at DESC, id
    `)
	if err != nil {
		return nil, eris.Wrap(err, "query projects")
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		var updated string
		if err := rows.Scan(&s.ID, &s.Name, &s.Version, &updated); err != nil {
			return nil, eris.Wrap(err, "scan project")
		}
		s.UpdatedAt = parseStamp(updated)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate projects")
	}
	return out, nil
}

func (r *Repository) summary(ctx context.Context, id string) (Summary, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, version, updated_at FROM projects WHERE id = ?`, id)

	var s Summary
	var updated string
	if err := row.Scan(&s.ID, &s.Name, &s.Version, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Summary{}, eris.Wrapf(ErrProjectNotFound, "project %s", id)
		}
		return Summary{}, eris.Wrap(err, "read project")
	}
	s.UpdatedAt = parseStamp(updated)
	return s, nil
}

// ============================================================
// Helpers
// ============================================================

func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "begin tx")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "commit")
	}
	return nil
}

func (r *Repository) stamp() string {
	return r.now().Format(time.RFC3339Nano)
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func scanProject(row *sql.Row, notFound error) (models.Project, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Project{}, notFound
		}
		return models.Project{}, eris.Wrap(err, "read snapshot")
	}

	var project models.Project
	if err := json.Unmarshal([]byte(data), &project); err != nil {
		return models.Project{}, eris.Wrap(err, "decode snapshot")
	}
	return project, nil
}

// OpenSQLite opens the database file, creating its directory.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, eris.Wrap(err, "mkdir db dir")
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
