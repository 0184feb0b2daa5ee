package repository

import (
	"context"
	"fmt"

	"tablecheck/internal/docstore"
	"tablecheck/internal/domain"
)

const MenuCollection = "menu"

type MenuRepositoryInterface interface {
	ListItems(ctx context.Context) ([]domain.MenuItem, error)
}

type MenuRepository struct {
	store docstore.Store
}

func NewMenuRepository(store docstore.Store) MenuRepositoryInterface {
	return &MenuRepository{store: store}
}

// ListItems returns every menu document with its key under "id".
func (mr *MenuRepository) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	docs, err := mr.store.List(ctx, MenuCollection)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	items := make([]domain.MenuItem, 0, len(docs))
	for _, d := range docs {
		item := domain.MenuItem{"id": d.Key}
		for k, v := range d.Fields {
			if k == "id" {
				continue
			}
			item[k] = v
		}
		items = append(items, item)
	}
	return items, nil
}
