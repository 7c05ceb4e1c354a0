package model

import "time"

// Role is the account type chosen at signup. It never changes afterwards.
type Role string

const (
	RoleDonor    Role = "donor"
	RoleReceiver Role = "receiver"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleReceiver
}

// User is a credential record, keyed by email.
type User struct {
	Email        string    `json:"email" gorm:"primaryKey;size:255" dynamodbav:"email"`
	Name         string    `json:"name" gorm:"size:255;not null" dynamodbav:"name"`
	PasswordHash string    `json:"-" gorm:"size:255;not null" dynamodbav:"passwordHash"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"size:20;not null" dynamodbav:"role"`
	CreatedAt    time.Time `json:"createdAt" gorm:"not null" dynamodbav:"createdAt"`
}

// TableName keeps the MySQL table aligned with the DynamoDB one.
func (User) TableName() string {
	return "users"
}

// PublicUser is the subset of a user returned to clients.
type PublicUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Public strips everything a client must not see.
func (u *User) Public() PublicUser {
	return PublicUser{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}
