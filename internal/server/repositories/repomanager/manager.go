package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/solarauth/internal/dbx"
	"github.com/dmitrijs2005/solarauth/internal/server/repositories/permissions"
	"github.com/dmitrijs2005/solarauth/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so that services
// can run several repositories inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Permissions(db dbx.DBTX) permissions.Repository
}
