package auth

import (
	"context"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// OwnershipPolicy is the attribute-based half of access control: a resource
// owned by a user is visible to that user and to administrators.
type OwnershipPolicy struct{}

func (p OwnershipPolicy) CanView(u *User, resourceOwnerID int64) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || u.ID == resourceOwnerID
}
