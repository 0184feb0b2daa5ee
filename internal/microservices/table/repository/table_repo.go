package repository

import (
	"context"
	"fmt"
	"time"

	"tablecheck/internal/docstore"
	"tablecheck/internal/domain"
)

const PhoneTableCollection = "phoneTable"

type TableRepositoryInterface interface {
	GetByPhone(ctx context.Context, phone string) (domain.TableAssignment, bool, error)
	Save(ctx context.Context, a domain.TableAssignment) error
}

type TableRepository struct {
	store docstore.Store
}

func NewTableRepository(store docstore.Store) TableRepositoryInterface {
	return &TableRepository{store: store}
}

func (tr *TableRepository) GetByPhone(ctx context.Context, phone string) (domain.TableAssignment, bool, error) {
	doc, found, err := tr.store.Get(ctx, PhoneTableCollection, phone)
	if err != nil {
		return domain.TableAssignment{}, false, fmt.Errorf("lookup table for %s: %w", phone, err)
	}
	if !found {
		return domain.TableAssignment{}, false, nil
	}
	a := domain.TableAssignment{
		PhoneNumber: phone,
		TableNumber: docstore.String(doc.Fields["tableNumber"]),
		UpdatedBy:   docstore.String(doc.Fields["updatedBy"]),
	}
	if ts, err := time.Parse(time.RFC3339Nano, docstore.String(doc.Fields["updatedAt"])); err == nil {
		a.UpdatedAt = ts
	}
	return a, true, nil
}

// Save replaces the whole record for the phone number.
func (tr *TableRepository) Save(ctx context.Context, a domain.TableAssignment) error {
	err := tr.store.Set(ctx, PhoneTableCollection, a.PhoneNumber, docstore.Fields{
		"phoneNumber": a.PhoneNumber,
		"tableNumber": a.TableNumber,
		"updatedBy":   a.UpdatedBy,
		"updatedAt":   a.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, docstore.Overwrite)
	if err != nil {
		return fmt.Errorf("save table for %s: %w", a.PhoneNumber, err)
	}
	return nil
}
