package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when no session record exists.
var ErrNotFound = errors.New("session: record not found")

// Store persists the single session record across restarts. It is the only
// place the record is written; all reads elsewhere go through the Manager.
//
//go:generate mockgen -source=$GOFILE -destination=../mocks/mock_$GOPACKAGE/mock_$GOFILE -package=mock_$GOPACKAGE
type Store interface {
	// Load returns the persisted record, or ErrNotFound when absent.
	Load(ctx context.Context) (*Session, error)
	// Save replaces the persisted record.
	Save(ctx context.Context, s *Session) error
	// Clear removes the persisted record. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
