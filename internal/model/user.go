package model

import "time"

// Role names stored in users.role. MEMBER is the default on registration;
// COMMITTEE and ADMIN may trigger pipeline transitions. Only an ADMIN may
// change another user's role.
const (
	RoleMember    = "MEMBER"
	RoleCommittee = "COMMITTEE"
	RoleAdmin     = "ADMIN"
)

// ValidRole reports whether r is a known role name.
func ValidRole(r string) bool {
	return r == RoleMember || r == RoleCommittee || r == RoleAdmin
}

// User mirrors the `users` table.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique, lower-cased)
	PasswordHash string    // users.password_hash (bcrypt)
	DisplayName  string    // users.display_name
	Role         string    // users.role (MEMBER, COMMITTEE, ADMIN)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken mirrors the `refresh_tokens` table. Only the SHA-256 hash of
// the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
