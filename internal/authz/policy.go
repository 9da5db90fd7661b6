// Package authz holds the single authorization rule of the service:
// a resource may be mutated by its owner or by an administrator.
package authz

import (
	"errors"

	"github.com/geocoder89/bloghub/internal/domain/user"
)

var ErrForbidden = errors.New("not allowed to modify this resource")

// CanMutate reports whether actor may update or delete a resource owned by
// ownerUsername.
func CanMutate(actor user.User, ownerUsername string) bool {
	return actor.Role.IsAdmin() || actor.Username == ownerUsername
}
