package ports

import (
	"context"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
)

// SessionStore persists the single durable OAuth session record. Load returns
// ErrNoSession when nothing is stored; Save overwrites the record atomically;
// Clear removes it entirely.
type SessionStore interface {
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context) error
}
