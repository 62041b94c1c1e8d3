package users

import (
	"context"

	"github.com/dmitrijs2005/solarauth/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in its generated ID. A duplicate login
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// FindByLogin returns every row with the given login, possibly none.
	FindByLogin(ctx context.Context, login string) ([]*models.User, error)
	// GetByID returns common.ErrorNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
