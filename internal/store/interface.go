// Package store defines the persistence contract the consolidation engine
// consumes. Adapters live in subpackages.
package store

import (
	"context"

	"github.com/listenupapp/tagengine/internal/domain"
)

// TransferResult reports how a batched transfer landed.
type TransferResult struct {
	// Transferred rows were re-pointed to the target tag.
	Transferred int
	// Deduplicated rows were dropped because the target already linked the
	// content item (a concurrent writer beat the transfer).
	Deduplicated int
}

// Total returns every row the transfer touched.
func (r TransferResult) Total() int {
	return r.Transferred + r.Deduplicated
}

// TagStore is the tag and association persistence contract.
//
// Name lookups are case-insensitive and trimmed. InsertTag and UpdateTag
// return ErrAlreadyExists when the (scope, name) uniqueness constraint fires;
// lookups by id return ErrNotFound. Association methods take a table from
// domain.AssociationTables and must be batched: one round trip per call,
// not per content id.
type TagStore interface {
	// Tags
	FindByName(ctx context.Context, scope, name string) (*domain.Tag, error)
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	InsertTag(ctx context.Context, t *domain.Tag) error
	UpdateTag(ctx context.Context, t *domain.Tag) error
	DeleteTag(ctx context.Context, id string) error
	ListByScope(ctx context.Context, scope string) ([]*domain.Tag, error)

	// Associations
	AddAssociation(ctx context.Context, table domain.AssociationTable, contentID, tagID string) error
	FindAssociationsByTag(ctx context.Context, table domain.AssociationTable, tagID string) ([]string, error)
	FindAssociationsByTags(ctx context.Context, table domain.AssociationTable, tagIDs []string) (map[string][]string, error)
	TransferAssociations(ctx context.Context, table domain.AssociationTable, contentIDs []string, fromTagID, toTagID string) (TransferResult, error)
	DeleteAssociations(ctx context.Context, table domain.AssociationTable, contentIDs []string, tagID string) (int, error)
}
