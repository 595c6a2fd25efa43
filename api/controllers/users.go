package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chifaexpress/storefront-backend/api/responses"
	"github.com/chifaexpress/storefront-backend/api/validators"
	"github.com/chifaexpress/storefront-backend/internal/users"
	"github.com/chifaexpress/storefront-backend/pkg/db/models"
	"github.com/chifaexpress/storefront-backend/pkg/enums"
	pkgerrors "github.com/chifaexpress/storefront-backend/pkg/errors"
	"github.com/chifaexpress/storefront-backend/pkg/logger"
)

type userDirectory interface {
	List(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName string, phone, address *string) error
}

// AdminUserList returns every account without credential material.
func AdminUserList(repo userDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user directory unavailable"))
			return
		}

		found, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users"))
			return
		}

		dtos := make([]*users.UserDTO, 0, len(found))
		for i := range found {
			dtos = append(dtos, users.FromModel(&found[i]))
		}
		responses.WriteSuccess(w, dtos)
	}
}

type userRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// AdminUserUpdateRole overwrites an account's role.
func AdminUserUpdateRole(repo userDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user directory unavailable"))
			return
		}

		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body userRoleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseUserRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		user, err := repo.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			} else {
				err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := repo.UpdateRole(r.Context(), userID, role); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role"))
			return
		}
		user.Role = role

		responses.WriteSuccess(w, users.FromModel(user))
	}
}

type userProfileRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// AdminUserUpdateProfile overwrites an account's contact fields.
func AdminUserUpdateProfile(repo userDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user directory unavailable"))
			return
		}

		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body userProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := repo.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			} else {
				err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := repo.UpdateProfile(r.Context(), userID, body.FullName, body.Phone, body.Address); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile"))
			return
		}
		user.FullName = body.FullName
		user.Phone = body.Phone
		user.Address = body.Address

		responses.WriteSuccess(w, users.FromModel(user))
	}
}
