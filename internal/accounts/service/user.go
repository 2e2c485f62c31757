package service

import (
	"context"
	"fmt"

	"github.com/harborgate/accountd/internal/accounts/domain"
	"github.com/harborgate/accountd/internal/accounts/store"
	"github.com/harborgate/accountd/pkg/slogx"
)

type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UpdateProfile mutates the user's first and last name.
func (s *UserService) UpdateProfile(ctx context.Context, userID, firstName, lastName string) error {
	if err := s.Store.Users().UpdateProfile(ctx, userID, firstName, lastName); err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	slogx.FromContext(ctx).Info("profile updated", "user_id", userID)
	return nil
}
