package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/akovalyov/inkwell/internal/models"
)

func Test_CanModify(t *testing.T) {
	t.Parallel()

	subject := uuid.New()
	other := uuid.New()

	tests := []struct {
		name     string
		role     models.Role
		subject  uuid.UUID
		owner    uuid.UUID
		expected bool
	}{
		{"user owns resource", models.RoleUser, subject, subject, true},
		{"user does not own resource", models.RoleUser, subject, other, false},
		{"admin owns resource", models.RoleAdmin, subject, subject, true},
		{"admin does not own resource", models.RoleAdmin, subject, other, true},
		{"unknown role does not own resource", models.Role("moderator"), subject, other, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, CanModify(tt.role, tt.subject, tt.owner))
		})
	}
}
