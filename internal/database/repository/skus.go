package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jask/baydesk/internal/catalog"
)

// SKURepo handles inventory SKUs.
type SKURepo struct{ db *sql.DB }

func NewSKURepo(db *sql.DB) *SKURepo { return &SKURepo{db: db} }

const skuColumns = `id, code, title, model_name, condition, cost_cents, created_at`

// Create inserts s under id, honouring the request key like ModelRepo.Create.
func (r *SKURepo) Create(ctx context.Context, id string, s catalog.NewSKU) (catalog.SKU, error) {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO skus(id, code, title, model_name, condition, cost_cents, request_key, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, id, s.Code, s.Title, s.ModelName, s.Condition, s.CostCents, nullable(s.RequestKey))
	if err != nil {
		err = mapConstraint(err)
		if errors.Is(err, ErrDuplicate) && s.RequestKey != "" {
			row := r.db.QueryRowContext(ctx, `SELECT `+skuColumns+` FROM skus WHERE request_key = ?`, s.RequestKey)
			if existing, gerr := scanSKU(row); gerr == nil {
				return existing, nil
			}
		}
		return catalog.SKU{}, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+skuColumns+` FROM skus WHERE id = ?`, id)
	return scanSKU(row)
}

func (r *SKURepo) GetByCode(ctx context.Context, code string) (catalog.SKU, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+skuColumns+` FROM skus WHERE code = ?`, code)
	return scanSKU(row)
}

// List returns the most recently created SKUs first.
func (r *SKURepo) List(ctx context.Context, limit int) ([]catalog.SKU, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+skuColumns+` FROM skus ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []catalog.SKU
	for rows.Next() {
		s, err := scanSKU(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSKU(s scanner) (catalog.SKU, error) {
	var k catalog.SKU
	err := s.Scan(&k.ID, &k.Code, &k.Title, &k.ModelName, &k.Condition, &k.CostCents, &k.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.SKU{}, catalog.ErrNotFound
	}
	return k, err
}
