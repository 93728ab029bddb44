package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	errDuplicateUsername = errors.New("username already exists")
	errDuplicateEmail    = errors.New("email already exists")
	errDuplicateTitle    = errors.New("task with this title already exists")
)

// store is the persistence boundary. Every task method takes the owner's
// ID as part of the query predicate, so there is no way to reach another
// user's task through this interface. allTasks is the single unscoped
// path and is reserved for the admin listing.
type store interface {
	insertUser(u *user) error
	getUserByUsername(username string) (*user, error)
	getUserByEmail(email string) (*user, error)

	tasksForOwner(ownerID int64) ([]task, error)
	tasksForOwnerByStatus(ownerID int64, completed bool) ([]task, error)
	taskByID(ownerID, id int64) (*task, error)
	taskByTitle(ownerID int64, title string) (*task, error)
	insertTask(t *task) error
	updateTask(t *task) error
	deleteTaskByID(ownerID, id int64) (bool, error)
	deleteTaskByTitle(ownerID int64, title string) (bool, error)
	taskCounts(ownerID int64) (total, completed int64, err error)
	allTasks() ([]task, error)
}

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConnections)
	db.SetMaxIdleConns(cfg.db.maxIdleConnections)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// migrate creates the schema. The unique constraints are the
// authoritative guards against duplicate usernames, emails and
// per-owner titles; handler-level pre-checks are a fast path only.
func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		username      TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash BYTEA NOT NULL,
		role          TEXT NOT NULL DEFAULT 'USER',
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
	);
	CREATE TABLE IF NOT EXISTS tasks (
		id         BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		owner_id   BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title      TEXT NOT NULL,
		completed  BOOLEAN NOT NULL DEFAULT FALSE,
		CONSTRAINT tasks_owner_id_title_key UNIQUE (owner_id, title)
	);`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := db.ExecContext(ctx, schema)
	return err
}

// translateUniqueViolation turns a Postgres unique-constraint error into
// the matching sentinel so callers can answer with a 409. Anything else
// passes through untouched.
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return err
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return errDuplicateUsername
	case "users_email_key":
		return errDuplicateEmail
	case "tasks_owner_id_title_key":
		return errDuplicateTitle
	}
	return err
}

type sqlStore struct {
	db *sql.DB
}

func newSQLStore(db *sql.DB) *sqlStore {
	return &sqlStore{db: db}
}

func (s *sqlStore) insertUser(u *user) error {
	query := `INSERT INTO users (username, email, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.Role)
	err := row.Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (s *sqlStore) getUserByUsername(username string) (*user, error) {
	query := `SELECT id, created_at, username, email, password_hash, role
			  FROM users
			  WHERE username = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, username)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *sqlStore) getUserByEmail(email string) (*user, error) {
	query := `SELECT id, created_at, username, email, password_hash, role
			  FROM users
			  WHERE email = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, email)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *sqlStore) queryTasks(query string, args ...any) ([]task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]task, 0)
	for rows.Next() {
		var t task
		err = rows.Scan(&t.ID, &t.CreatedAt, &t.OwnerID, &t.Title, &t.Completed)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *sqlStore) tasksForOwner(ownerID int64) ([]task, error) {
	query := `SELECT id, created_at, owner_id, title, completed
			  FROM tasks
			  WHERE owner_id = $1
			  ORDER BY id`
	return s.queryTasks(query, ownerID)
}

func (s *sqlStore) tasksForOwnerByStatus(ownerID int64, completed bool) ([]task, error) {
	query := `SELECT id, created_at, owner_id, title, completed
			  FROM tasks
			  WHERE owner_id = $1 AND completed = $2
			  ORDER BY id`
	return s.queryTasks(query, ownerID, completed)
}

func (s *sqlStore) allTasks() ([]task, error) {
	query := `SELECT id, created_at, owner_id, title, completed
			  FROM tasks
			  ORDER BY id`
	return s.queryTasks(query)
}

func (s *sqlStore) taskByID(ownerID, id int64) (*task, error) {
	query := `SELECT id, created_at, owner_id, title, completed
			  FROM tasks
			  WHERE owner_id = $1 AND id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, ownerID, id)
	var t task
	err := row.Scan(&t.ID, &t.CreatedAt, &t.OwnerID, &t.Title, &t.Completed)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *sqlStore) taskByTitle(ownerID int64, title string) (*task, error) {
	query := `SELECT id, created_at, owner_id, title, completed
			  FROM tasks
			  WHERE owner_id = $1 AND title = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, ownerID, title)
	var t task
	err := row.Scan(&t.ID, &t.CreatedAt, &t.OwnerID, &t.Title, &t.Completed)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *sqlStore) insertTask(t *task) error {
	query := `INSERT INTO tasks (owner_id, title, completed)
			  VALUES ($1, $2, $3)
			  RETURNING id, created_at`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, t.OwnerID, t.Title, t.Completed)
	err := row.Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (s *sqlStore) updateTask(t *task) error {
	query := `UPDATE tasks SET title = $1, completed = $2
			  WHERE owner_id = $3 AND id = $4`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, query, t.Title, t.Completed, t.OwnerID, t.ID)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (s *sqlStore) deleteTaskByID(ownerID, id int64) (bool, error) {
	query := `DELETE FROM tasks
			  WHERE owner_id = $1 AND id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *sqlStore) deleteTaskByTitle(ownerID int64, title string) (bool, error) {
	query := `DELETE FROM tasks
			  WHERE owner_id = $1 AND title = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx, query, ownerID, title)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *sqlStore) taskCounts(ownerID int64) (int64, int64, error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE completed)
			  FROM tasks
			  WHERE owner_id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var total, completed int64
	err := s.db.QueryRowContext(ctx, query, ownerID).Scan(&total, &completed)
	if err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}
