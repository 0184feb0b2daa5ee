package service

import (
	"context"

	"tablecheck/internal/domain"
	"tablecheck/internal/microservices/menu/repository"
)

type MenuServiceInterface interface {
	Menu(ctx context.Context) ([]domain.MenuItem, error)
}

type MenuService struct {
	repo repository.MenuRepositoryInterface
}

func NewMenuService(repo repository.MenuRepositoryInterface) MenuServiceInterface {
	return &MenuService{repo: repo}
}

func (s *MenuService) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.ListItems(ctx)
}
