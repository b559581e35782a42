package cache

import (
	"context"

	"github.com/satorioh/dashop/internal/entity"
)

// Store is the narrow cart storage contract. Get on an absent user returns
// an empty non-nil cart, never an error. Put overwrites the whole mapping;
// callers read-modify-write the full cart themselves, so two interleaving
// writers for the same user are last-write-wins.
type Store interface {
	Get(ctx context.Context, userID int) (entity.Cart, error)
	Put(ctx context.Context, userID int, cart entity.Cart) error
}
