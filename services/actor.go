package services

import (
	"student-fees-api/database"
	"student-fees-api/model"
	"student-fees-api/utils/apperr"
)

// Actor is the authenticated identity performing an operation. The HTTP
// layer resolves it from the JWT before any service call; the services never
// see credentials.
type Actor struct {
	UserID uint
	Role   string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// IsZero reports whether no identity was established.
func (a Actor) IsZero() bool {
	return a.UserID == 0
}

// AccessService decides whether an actor may touch a target entity.
type AccessService struct {
	store database.Storage
}

// NewAccessService creates a new access service
func NewAccessService(store database.Storage) *AccessService {
	return &AccessService{store: store}
}

// AuthorizeRole fails with a forbidden error unless the actor's role is one
// of the allowed roles.
func (s *AccessService) AuthorizeRole(actor Actor, roles ...string) error {
	if actor.IsZero() {
		return apperr.Authentication("not authorized to access this resource")
	}
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return apperr.Forbidden("user role " + actor.Role + " is not authorized for this action")
}

// AuthorizeStudentAccess resolves the target student and checks ownership.
// Admins pass for any student; a student actor passes only for their own
// record. A student actor without a profile fails with a not-found error.
func (s *AccessService) AuthorizeStudentAccess(actor Actor, targetStudentID uint) (*model.Student, error) {
	if actor.IsZero() {
		return nil, apperr.Authentication("not authorized to access this resource")
	}

	if actor.IsAdmin() {
		return s.store.GetStudentByID(targetStudentID)
	}

	own, err := s.store.GetStudentByUserID(actor.UserID)
	if err != nil {
		return nil, err
	}
	if own.ID != targetStudentID {
		return nil, apperr.Forbidden("not authorized to access this student's data")
	}
	return own, nil
}

// ResolveStudent returns the actor's own student profile.
func (s *AccessService) ResolveStudent(actor Actor) (*model.Student, error) {
	if actor.IsZero() {
		return nil, apperr.Authentication("not authorized to access this resource")
	}
	return s.store.GetStudentByUserID(actor.UserID)
}
