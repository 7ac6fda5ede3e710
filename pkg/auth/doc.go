// Package auth provides local authentication primitives: bcrypt password
// hashing, HS256 session tokens and random codes.
//
// # Passwords
//
//	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
//	hash, err := hasher.HashPassword(password)
//	err = hasher.CheckPassword(hash, attempt) // auth.ErrPasswordMismatch on a wrong password
//
// # Session Tokens
//
//	tokens, err := auth.NewTokenManager(secret, "workboard", 24*time.Hour)
//	signed, expiresAt, err := tokens.Issue(user.ID, user.Email, user.Name)
//	claims, err := tokens.Verify(signed)
//
// The auth middleware stores the verified claims in the request context:
//
//	userID := auth.UserIDFromContext(r.Context())
//
// # Codes
//
//	code, err := auth.RandomCode(8) // invite codes
package auth
