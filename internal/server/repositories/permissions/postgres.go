package permissions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/solarauth/internal/dbx"
	"github.com/dmitrijs2005/solarauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Permission, error) {
	query :=
		`SELECT permission.id, permission.user_id, permission.permission_type, permission_type.title
		 FROM permission
		 INNER JOIN permission_type ON permission.permission_type = permission_type.id
		 WHERE permission.user_id = $1
		 ORDER BY permission.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Permission
	for rows.Next() {
		p := &models.Permission{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.PermissionType, &p.Title); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}
