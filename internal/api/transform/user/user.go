package user

import (
	"github.com/faithinsite/core/internal/api/fiapi"
	"github.com/faithinsite/core/internal/model"
)

// ToAPI converts a user model into its API representation. The password
// hash never crosses this boundary.
func ToAPI(user model.User) (*fiapi.User, error) {
	return &fiapi.User{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	}, nil
}
