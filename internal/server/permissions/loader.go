// Package permissions resolves the permission set of a user and answers
// "may this user do X" questions, caching sets per request.
package permissions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/solarauth/internal/common"
	"github.com/dmitrijs2005/solarauth/internal/dbx"
	"github.com/dmitrijs2005/solarauth/internal/logging"
	"github.com/dmitrijs2005/solarauth/internal/server/models"
	"github.com/dmitrijs2005/solarauth/internal/server/repositories/repomanager"
)

// Set maps a permission title to the granting permission row.
type Set map[string]*models.Permission

// Has reports whether the set contains title.
func (s Set) Has(title string) bool {
	_, ok := s[title]
	return ok
}

// Loader reads permission sets from the store.
type Loader struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewLoader constructs a Loader.
func NewLoader(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Loader{db: db, repomanager: rm, logger: logger.With("module", "permissions")}
}

// Load returns the permission set of user. When ctx carries a scope (see
// WithScope) the set is loaded at most once per user for that scope.
//
// On store failure the returned set is empty and the error wraps
// common.ErrorInternal.
func (l *Loader) Load(ctx context.Context, user *models.User) (Set, error) {
	if user == nil {
		return Set{}, nil
	}

	sc := scopeFrom(ctx)
	if sc != nil {
		if set, ok := sc.get(user.ID); ok {
			return set, nil
		}
	}

	set := Set{}
	err := dbx.WithReadTx(ctx, l.db, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := l.repomanager.Permissions(tx).ListByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, p := range rows {
			if prev, ok := set[p.Title]; ok {
				l.logger.Warn(ctx, "duplicate permission title",
					"user_id", user.ID, "title", p.Title, "previous_id", prev.ID, "id", p.ID)
			}
			set[p.Title] = p
		}
		return nil
	})
	if err != nil {
		l.logger.Error(ctx, "error loading permissions", "user_id", user.ID, "error", err)
		return Set{}, fmt.Errorf("%w: loading permissions: %w", common.ErrorInternal, err)
	}

	if sc != nil {
		sc.put(user.ID, set)
	}
	return set, nil
}

// Check reports whether user holds the permission title.
func (l *Loader) Check(ctx context.Context, user *models.User, title string) Decision {
	if user == nil {
		return Denied
	}
	set, err := l.Load(ctx, user)
	if err != nil {
		return Undetermined
	}
	if set.Has(title) {
		return Granted
	}
	return Denied
}
