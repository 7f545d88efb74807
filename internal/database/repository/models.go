package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/jask/baydesk/internal/catalog"
)

// ErrDuplicate is returned when an insert collides with a unique column.
var ErrDuplicate = errors.New("repository: duplicate record")

// ModelRepo handles parts models.
type ModelRepo struct {
	db *sql.DB
}

func NewModelRepo(db *sql.DB) *ModelRepo {
	return &ModelRepo{db: db}
}

const modelColumns = `id, name, brand, part_number, category, created_at`

// Create inserts m under id. When m carries a request key that was already
// used, the model stored by that earlier request is returned instead. The
// insert runs first so two racing requests with one key cannot both miss.
func (r *ModelRepo) Create(ctx context.Context, id string, m catalog.NewModel) (catalog.Model, error) {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO models(id, name, brand, part_number, category, request_key, created_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, id, m.Name, m.Brand, m.PartNumber, m.Category, nullable(m.RequestKey))
	if err != nil {
		err = mapConstraint(err)
		if errors.Is(err, ErrDuplicate) && m.RequestKey != "" {
			if existing, gerr := r.getBy(ctx, "request_key", m.RequestKey); gerr == nil {
				return existing, nil
			}
		}
		return catalog.Model{}, err
	}
	return r.Get(ctx, id)
}

func (r *ModelRepo) Get(ctx context.Context, id string) (catalog.Model, error) {
	return r.getBy(ctx, "id", id)
}

// GetByName matches case-insensitively.
func (r *ModelRepo) GetByName(ctx context.Context, name string) (catalog.Model, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE name = ? COLLATE NOCASE`, name)
	return scanModel(row)
}

func (r *ModelRepo) getBy(ctx context.Context, column, value string) (catalog.Model, error) {
	// column is one of a fixed set of identifiers, never user input.
	row := r.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE `+column+` = ?`, value)
	return scanModel(row)
}

// Search returns every model whose name, brand or part number contains term,
// ordered by name.
func (r *ModelRepo) Search(ctx context.Context, term string) ([]catalog.Model, error) {
	where, args := searchClause(term)
	rows, err := r.db.QueryContext(ctx, `SELECT `+modelColumns+` FROM models`+where+` ORDER BY name COLLATE NOCASE`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []catalog.Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns how many models Search would return.
func (r *ModelRepo) Count(ctx context.Context, term string) (int, error) {
	where, args := searchClause(term)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM models`+where, args...).Scan(&n)
	return n, err
}

func searchClause(term string) (string, []any) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", nil
	}
	like := "%" + escapeLike(term) + "%"
	return ` WHERE name LIKE ? ESCAPE '\' OR brand LIKE ? ESCAPE '\' OR part_number LIKE ? ESCAPE '\'`, []any{like, like, like}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanModel(s scanner) (catalog.Model, error) {
	var m catalog.Model
	err := s.Scan(&m.ID, &m.Name, &m.Brand, &m.PartNumber, &m.Category, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Model{}, catalog.ErrNotFound
	}
	return m, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mapConstraint(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && (se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return ErrDuplicate
	}
	return err
}
