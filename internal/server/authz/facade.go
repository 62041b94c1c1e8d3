// Package authz answers the two questions every protected call asks: who is
// behind this token, and may that user do a given thing.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/solarauth/internal/common"
	"github.com/dmitrijs2005/solarauth/internal/logging"
	"github.com/dmitrijs2005/solarauth/internal/server/models"
	"github.com/dmitrijs2005/solarauth/internal/server/permissions"
)

// TokenCodec issues and decodes bearer tokens.
type TokenCodec interface {
	Issue(userID int64) (string, error)
	Decode(token string) (int64, error)
}

// UserLookup resolves a user by id.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// PermissionChecker decides whether a user holds a permission.
type PermissionChecker interface {
	Check(ctx context.Context, user *models.User, title string) permissions.Decision
}

type Facade struct {
	codec  TokenCodec
	users  UserLookup
	perms  PermissionChecker
	logger logging.Logger
}

func NewFacade(codec TokenCodec, users UserLookup, perms PermissionChecker, logger logging.Logger) *Facade {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Facade{codec: codec, users: users, perms: perms, logger: logger.With("module", "authz")}
}

// Verify returns the user the token was issued to. Any failure, including
// an unknown user or an unreachable store, yields (nil, false).
func (f *Facade) Verify(ctx context.Context, token string) (*models.User, bool) {
	id, err := f.codec.Decode(token)
	if err != nil {
		f.logger.Debug(ctx, "token rejected")
		return nil, false
	}

	user, err := f.users.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			f.logger.Error(ctx, "error resolving token user", "user_id", id, "error", err)
		}
		return nil, false
	}
	return user, true
}

// Check returns the typed permission decision for user.
func (f *Facade) Check(ctx context.Context, user *models.User, title string) permissions.Decision {
	if user == nil {
		return permissions.Denied
	}
	d := f.perms.Check(ctx, user, title)
	if d == permissions.Undetermined {
		f.logger.Warn(ctx, "permission check undetermined", "user_id", user.ID, "permission", title)
	}
	return d
}

// UserCan reports whether user holds the permission title. Only a
// Granted decision counts.
func (f *Facade) UserCan(ctx context.Context, user *models.User, title string) bool {
	return f.Check(ctx, user, title) == permissions.Granted
}

// Authorise exchanges a valid token for a freshly issued one. An invalid
// token yields an empty token and no error.
func (f *Facade) Authorise(ctx context.Context, token string) (*models.Token, error) {
	user, ok := f.Verify(ctx, token)
	if !ok {
		return &models.Token{}, nil
	}

	fresh, err := f.codec.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: error issuing token: %w", common.ErrorInternal, err)
	}
	return &models.Token{Data: fresh}, nil
}
