package identity

import (
	"context"
	"fmt"
	"time"

	"tablecheck/internal/docstore"
)

// RevocationStore records sessions that were signed out before they expired.
type RevocationStore interface {
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, id Identity) error
}

const RevokedSessionsCollection = "revokedSessions"

type DocRevocations struct {
	store      docstore.Store
	collection string
}

func NewDocRevocations(store docstore.Store) *DocRevocations {
	return &DocRevocations{store: store, collection: RevokedSessionsCollection}
}

func (r *DocRevocations) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	_, found, err := r.store.Get(ctx, r.collection, sessionID)
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return found, nil
}

func (r *DocRevocations) Revoke(ctx context.Context, id Identity) error {
	err := r.store.Set(ctx, r.collection, id.SessionID, docstore.Fields{
		"uid":       id.UID,
		"revokedAt": time.Now().UTC().Format(time.RFC3339),
		"expiresAt": id.ExpiresAt.UTC().Format(time.RFC3339),
	}, docstore.Overwrite)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
