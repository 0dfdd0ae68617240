package models

import "time"

type Role string

const RoleAdmin Role = "ADMIN"

type Admin struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

// AdminProfile is the public projection of an Admin. It never carries the
// password hash.
type AdminProfile struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (a Admin) Profile() AdminProfile {
	return AdminProfile{ID: a.ID, Email: a.Email, Role: a.Role, CreatedAt: a.CreatedAt}
}

// AdminUpdate holds the fields an admin update may touch. Nil means unchanged.
type AdminUpdate struct {
	PasswordHash *string
	Role         *Role
}
