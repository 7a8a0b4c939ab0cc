package services

import (
	"github.com/google/uuid"

	"github.com/voyagee/travel-backend/internal/models"
)

// CanMutate is the single ownership rule for destinations, tours and
// itineraries: admins may change anything, everyone else only what they
// created. Rows without a recorded creator are admin-only.
func CanMutate(identity *models.Identity, ownerID *uuid.UUID) bool {
	if identity == nil {
		return false
	}
	if identity.IsAdmin() {
		return true
	}
	return ownerID != nil && *ownerID == identity.ID
}

// CanViewProfile allows a person to read their own profile and admins to read any
func CanViewProfile(identity *models.Identity, profileID uuid.UUID) bool {
	return identity != nil && (identity.IsAdmin() || identity.ID == profileID)
}

// resolveRole maps the requested registration type to an auths.role.
// Only an authenticated admin requester may create another admin.
func resolveRole(userType string, requester *models.Identity) (string, error) {
	switch userType {
	case models.UserTypeGuia:
		return models.RoleGuide, nil
	case models.UserTypeAdmin:
		if !requester.IsAdmin() {
			return "", forbiddenError("Apenas administradores podem criar outros administradores")
		}
		return models.RoleAdmin, nil
	default:
		return models.RoleUser, nil
	}
}
