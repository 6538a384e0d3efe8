package jwtauth

import (
	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
	authmw "campusforum/pkg/platform/middleware/auth"
)

// ServiceAdapter converts validated JWT claims into the principal shape the
// auth middleware consumes. Parsing here means a token with a garbage subject
// or role never reaches a handler.
type ServiceAdapter struct {
	service *Service
}

func NewServiceAdapter(service *Service) *ServiceAdapter {
	return &ServiceAdapter{service: service}
}

func (a *ServiceAdapter) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}

	return &authmw.Claims{
		UserID:   userID,
		Username: claims.Username,
		Role:     role,
		JTI:      claims.ID,
	}, nil
}
