package service

import (
	"errors"

	"github.com/freshplate/freshplate/internal/metrics"
	"github.com/freshplate/freshplate/internal/model"
)

// SelfOrAdmin allows the caller to act on targetUserID's account when it is
// their own or they are an admin.
func SelfOrAdmin(caller *model.AuthContext, targetUserID string) error {
	if caller == nil {
		return ErrUnauthorized
	}
	if caller.IsAdmin || caller.IsSelf(targetUserID) {
		return nil
	}
	return ErrForbidden
}

// AdminOnly allows only admins.
func AdminOnly(caller *model.AuthContext) error {
	if caller == nil {
		return ErrUnauthorized
	}
	if caller.IsAdmin {
		return nil
	}
	return ErrForbidden
}

// OwnerOrAdmin allows the creator of a resource, or an admin.
func OwnerOrAdmin(caller *model.AuthContext, ownerID string) error {
	if caller == nil {
		return ErrUnauthorized
	}
	if caller.IsAdmin || (ownerID != "" && caller.UserID == ownerID) {
		return nil
	}
	return ErrForbidden
}

// recordDenial counts a failed policy check and passes err through.
func recordDenial(rec metrics.Recorder, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnauthorized):
		rec.IncAuthorizationDenied("unauthorized")
	case errors.Is(err, ErrForbidden):
		rec.IncAuthorizationDenied("forbidden")
	}
	return err
}
