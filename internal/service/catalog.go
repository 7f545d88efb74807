package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/baydesk/internal/catalog"
	"github.com/jask/baydesk/internal/database/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// CatalogService implements catalog.Catalog on the local sqlite repositories.
type CatalogService struct {
	Models *repository.ModelRepo
	SKUs   *repository.SKURepo
}

var _ catalog.Catalog = (*CatalogService)(nil)

// ListModels filters by search term, ranks by relevance and returns the requested page.
func (s *CatalogService) ListModels(ctx context.Context, q catalog.ModelQuery) (catalog.ModelPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	offset := max(q.Offset, 0)

	all, err := s.Models.Search(ctx, q.Search)
	if err != nil {
		return catalog.ModelPage{}, fmt.Errorf("search models: %w", err)
	}
	ranked := catalog.Rank(q.Search, all)
	page := catalog.ModelPage{Total: len(ranked), Offset: offset, Models: []catalog.Model{}}
	if offset < len(ranked) {
		page.Models = ranked[offset:min(offset+limit, len(ranked))]
	}
	return page, nil
}

// CreateModel validates m and stores it. Duplicate names are a validation error.
func (s *CatalogService) CreateModel(ctx context.Context, m catalog.NewModel) (catalog.Model, error) {
	m = m.Normalize()
	if err := catalog.ValidateNewModel(m); err != nil {
		return catalog.Model{}, err
	}
	if m.RequestKey == "" {
		if _, err := s.Models.GetByName(ctx, m.Name); err == nil {
			return catalog.Model{}, catalog.FieldError("name", "a model with this name already exists")
		} else if !errors.Is(err, catalog.ErrNotFound) {
			return catalog.Model{}, err
		}
	}
	created, err := s.Models.Create(ctx, uuid.NewString(), m)
	if errors.Is(err, repository.ErrDuplicate) {
		return catalog.Model{}, catalog.FieldError("name", "a model with this name already exists")
	}
	if err != nil {
		return catalog.Model{}, fmt.Errorf("create model: %w", err)
	}
	return created, nil
}

func (s *CatalogService) ListSKUs(ctx context.Context, limit int) ([]catalog.SKU, error) {
	return s.SKUs.List(ctx, limit)
}

// CreateSKU validates sku and stores it. Duplicate codes are a validation error.
func (s *CatalogService) CreateSKU(ctx context.Context, sku catalog.NewSKU) (catalog.SKU, error) {
	sku = sku.Normalize()
	if err := catalog.ValidateNewSKU(sku); err != nil {
		return catalog.SKU{}, err
	}
	if sku.RequestKey == "" {
		if _, err := s.SKUs.GetByCode(ctx, sku.Code); err == nil {
			return catalog.SKU{}, catalog.FieldError("code", "a SKU with this code already exists")
		} else if !errors.Is(err, catalog.ErrNotFound) {
			return catalog.SKU{}, err
		}
	}
	created, err := s.SKUs.Create(ctx, uuid.NewString(), sku)
	if errors.Is(err, repository.ErrDuplicate) {
		return catalog.SKU{}, catalog.FieldError("code", "a SKU with this code already exists")
	}
	if err != nil {
		return catalog.SKU{}, fmt.Errorf("create sku: %w", err)
	}
	return created, nil
}
