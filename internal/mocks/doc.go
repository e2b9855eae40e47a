// Package mocks provides shared test doubles for interfaces that several
// packages depend on.
//
// Usage:
//
//	jwtService := &mocks.MockJWTService{
//	    Claims: &auth.Claims{UserID: learnerID},
//	}
//	authMiddleware := middleware.NewAuthMiddleware(jwtService)
//
// Mocks that only one package needs live next to that package's tests.
package mocks
