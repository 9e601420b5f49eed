package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Staff roles. Admins manage registrations; staff run race-day stations.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// AdminUser is a back-office account with bcrypt-hashed password.
type AdminUser struct {
	bun.BaseModel `bun:"table:admin_users,alias:au"`

	ID       uuid.UUID `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()" json:"id"`
	Email    string    `bun:"email,notnull,unique" json:"email"`
	Nama     string    `bun:"nama,notnull" json:"nama"`
	Role     string    `bun:"role,notnull,default:'staff'" json:"role"`
	Password string    `bun:"password,notnull" json:"-"`
}
