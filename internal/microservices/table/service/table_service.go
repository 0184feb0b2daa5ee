package service

import (
	"context"
	"strings"
	"time"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/domain"
	"tablecheck/internal/microservices/table/repository"
)

type TableServiceInterface interface {
	Lookup(ctx context.Context, phone string) (domain.TableLookupResponse, error)
	Assign(ctx context.Context, phone, table, updatedBy string) (domain.TableLookupResponse, error)
}

type TableService struct {
	repo repository.TableRepositoryInterface
	lg   *logger.Logger
}

func NewTableService(repo repository.TableRepositoryInterface, lg *logger.Logger) TableServiceInterface {
	return &TableService{repo: repo, lg: lg}
}

func (s *TableService) Lookup(ctx context.Context, phone string) (domain.TableLookupResponse, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.TableLookupResponse{}, domain.Invalid("phoneNumber is required")
	}
	a, found, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		return domain.TableLookupResponse{}, err
	}
	if !found {
		return domain.TableLookupResponse{}, domain.ErrNotFound
	}
	return domain.TableLookupResponse{PhoneNumber: phone, TableNumber: a.TableNumber}, nil
}

func (s *TableService) Assign(ctx context.Context, phone, table, updatedBy string) (domain.TableLookupResponse, error) {
	phone, table = strings.TrimSpace(phone), strings.TrimSpace(table)
	if phone == "" || table == "" {
		return domain.TableLookupResponse{}, domain.Invalid("phoneNumber and tableNumber are required")
	}
	err := s.repo.Save(ctx, domain.TableAssignment{
		PhoneNumber: phone,
		TableNumber: table,
		UpdatedBy:   updatedBy,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return domain.TableLookupResponse{}, err
	}
	s.lg.Info("table_assigned", map[string]any{"table": table, "updated_by": updatedBy})
	return domain.TableLookupResponse{PhoneNumber: phone, TableNumber: table}, nil
}
