package repository

import "tablecheck/internal/docstore"

type Repository struct {
	OrderRepo OrderRepositoryInterface
}

func New(store docstore.Store) *Repository {
	return &Repository{
		OrderRepo: NewOrderRepository(store),
	}
}
