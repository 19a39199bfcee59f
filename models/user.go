package models

import "time"

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleStaff        Role = "staff"
	RoleProfessional Role = "professional"
	RoleClient       Role = "client"
)

// User is the tenant-side view of an account. The engine only reads it.
type User struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Role      Role      `bson:"role" json:"role"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (u *User) IsProfessional() bool {
	return u != nil && u.IsActive && u.Role == RoleProfessional
}
