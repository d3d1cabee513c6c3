package model

import "time"

// Role names are a closed set seeded at migration time. Every user references
// exactly one of them.
const (
	RoleAdmin      = "Admin"
	RolePharmacist = "Pharmacist"
	RoleCashier    = "Cashier"
	RoleCustomer   = "Customer"
	RoleSupplier   = "Supplier"
)

func ValidRoleName(name string) bool {
	switch name {
	case RoleAdmin, RolePharmacist, RoleCashier, RoleCustomer, RoleSupplier:
		return true
	}
	return false
}

type Role struct {
	ID       string `json:"id"`
	RoleName string `json:"role_name"`
}

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            Role      `json:"role"`
	ContactNumber   string    `json:"contact_number"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserResponse is the outward shape of a user record; it never carries the
// password hash.
type UserResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	ContactNumber   string    `json:"contact_number"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role.RoleName,
		ContactNumber:   u.ContactNumber,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
	}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
