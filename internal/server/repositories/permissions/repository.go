// Package permissions provides read access to the permissions assigned to
// a user, joined with their permission type titles.
package permissions

import (
	"context"

	"github.com/dmitrijs2005/solarauth/internal/server/models"
)

type Repository interface {
	// ListByUser returns the user's permission rows ordered by id.
	ListByUser(ctx context.Context, userID int64) ([]*models.Permission, error)
}
