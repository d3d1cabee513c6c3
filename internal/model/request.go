package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	ContactNumber string `json:"contact_number"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type CreateUserRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	ContactNumber string `json:"contact_number"`
}

// UpdateUserRequest uses pointers so the handler can tell "absent" from
// "set to zero value".
type UpdateUserRequest struct {
	Name            *string `json:"name,omitempty"`
	Password        *string `json:"password,omitempty"`
	Role            *string `json:"role,omitempty"`
	ContactNumber   *string `json:"contact_number,omitempty"`
	IsEmailVerified *bool   `json:"is_email_verified,omitempty"`
}

type ListUsersQuery struct {
	Page   int
	Limit  int
	Search string
	Role   string
}
