package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablecheck/internal/common/logger"
	"tablecheck/internal/docstore"
	"tablecheck/internal/domain"
	"tablecheck/internal/microservices/table/repository"
)

func init() { logger.SetOutput(io.Discard) }

func TestAssignThenLookup(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	svc := NewTableService(repository.NewTableRepository(store), logger.New("test"))

	_, err := svc.Lookup(ctx, " 555-0101 ")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resp, err := svc.Assign(ctx, " 555-0101", "12 ", "staff-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TableLookupResponse{PhoneNumber: "555-0101", TableNumber: "12"}, resp)

	resp, err = svc.Lookup(ctx, "555-0101")
	require.NoError(t, err)
	assert.Equal(t, "12", resp.TableNumber)

	doc, found, err := store.Get(ctx, repository.PhoneTableCollection, "555-0101")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "staff-1", doc.Fields["updatedBy"])
	assert.NotEmpty(t, doc.Fields["updatedAt"])
}

func TestTableValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewTableService(repository.NewTableRepository(docstore.NewMemory()), logger.New("test"))

	_, err := svc.Lookup(ctx, "   ")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Assign(ctx, "555", "", "staff-1")
	assert.True(t, domain.IsValidation(err))
}
