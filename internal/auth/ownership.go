package auth

import apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"

// RequireOwner fails with a 403 carrying message when the authenticated
// customer is not the owner of the resource.
func RequireOwner(customerID, ownerID int64, message string) error {
	if customerID != ownerID {
		return apperrors.NewForbidden(message)
	}
	return nil
}
