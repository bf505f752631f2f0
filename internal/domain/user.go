package domain

import "time"

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password,omitempty"` // Save to DB but omit from responses when empty
	FullName    string `json:"full_name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	// AvatarPath is a private storage path ({id}/avatar/profile.{ext}),
	// not a URL; it resolves through the signed-URL flow.
	AvatarPath string `json:"avatar_path,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
	// Upgraded lifts the free-tier note ceiling.
	Upgraded  bool      `json:"upgraded"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// UpdateProfileRequest patches profile metadata field by field; nil fields
// are left as they are.
type UpdateProfileRequest struct {
	FullName    *string `json:"full_name"`
	DisplayName *string `json:"display_name"`
	Timezone    *string `json:"timezone"`
}
