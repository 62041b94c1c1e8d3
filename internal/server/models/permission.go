package models

// Permission is a permission row joined with the title of its type.
type Permission struct {
	ID             int64
	UserID         int64
	PermissionType int64
	Title          string
}
