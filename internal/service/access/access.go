// Package access holds the authorization rule for resource mutation.
// It is a pure function so it can be tested without any HTTP or storage context.
package access

import (
	"github.com/google/uuid"

	"github.com/akovalyov/inkwell/internal/models"
)

// CanModify reports whether the subject may mutate a resource owned by ownerID.
// Owners may modify their own resources, admins may modify anything.
func CanModify(role models.Role, subjectID uuid.UUID, ownerID uuid.UUID) bool {
	return subjectID == ownerID || role == models.RoleAdmin
}
