package users

import "time"

// User is a registered account. Users are never hard-deleted.
type User struct {
	ID                 string     `db:"id" json:"id"`
	Name               string     `db:"name" json:"name"`
	Email              string     `db:"email" json:"email"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	AvatarURL          *string    `db:"avatar_url" json:"avatarUrl"`
	CurrentWorkspaceID *string    `db:"current_workspace_id" json:"currentWorkspaceId"`
	IsActive           bool       `db:"is_active" json:"isActive"`
	LastLoginAt        *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

// RegisterInput is the payload for creating an account
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the payload for password login
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned by a successful login or registration
type Session struct {
	User      *User     `json:"user"`
	Token     string    `json:"accessToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Allowed avatar content types and their file extensions
var avatarTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// MaxAvatarBytes is the largest accepted avatar upload
const MaxAvatarBytes = 2 << 20
