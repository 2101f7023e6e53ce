package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator turns credentials into a member identity.
// Implementations may use passwords, passkeys or an external provider.
type Authenticator interface {
	// Register creates a member account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.Member, error)

	// Authenticate verifies the credential and returns the member it belongs to.
	Authenticate(ctx context.Context, email, credential string) (*models.Member, error)

	// Lookup returns the member behind an already authenticated session.
	Lookup(ctx context.Context, memberID string) (*models.Member, error)

	// ValidateCredential checks that a credential is acceptable before it is stored.
	ValidateCredential(credential string) error
}
