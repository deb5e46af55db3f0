package auth

import (
	"time"

	"student-fees-api/model"
)

// TokenStore is the slice of the storage contract the blacklist needs.
type TokenStore interface {
	BlacklistToken(entry *model.JWTTokenBlacklist) error
	IsTokenBlacklisted(jti string) (bool, error)
	BumpTokenVersion(userID uint) error
}

// BlacklistService handles JWT token revocation
type BlacklistService struct {
	store TokenStore
}

// NewBlacklistService creates a new blacklist service
func NewBlacklistService(store TokenStore) *BlacklistService {
	return &BlacklistService{store: store}
}

// RevokeToken adds a token to the blacklist until it would have expired anyway
func (s *BlacklistService) RevokeToken(jti string, userID uint, expiresAt time.Time, reason string) error {
	return s.store.BlacklistToken(&model.JWTTokenBlacklist{
		JTI:       jti,
		UserID:    userID,
		Reason:    reason,
		ExpiresAt: expiresAt,
	})
}

// IsTokenRevoked checks if a token is in the blacklist
func (s *BlacklistService) IsTokenRevoked(jti string) (bool, error) {
	return s.store.IsTokenBlacklisted(jti)
}

// RevokeAllUserTokens increments the user's token version to invalidate all tokens
func (s *BlacklistService) RevokeAllUserTokens(userID uint) error {
	return s.store.BumpTokenVersion(userID)
}
