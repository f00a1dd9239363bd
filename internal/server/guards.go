package server

import (
	"melodia/internal/middleware"
	"melodia/internal/models"
	"melodia/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
)

const (
	localUserID = "userID"
	localUser   = "user"
	localClaims = "claims"
)

// AuthRequired returns the authentication middleware. The bearer token must be
// valid, not revoked, and belong to a user that still exists.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return models.NewUnauthorizedError("Authorization required")
		}

		user, claims, err := s.userService.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		s.setIdentity(c, user)
		c.Locals(localClaims, claims)
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that the user is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil {
			return models.NewUnauthorizedError("Authorization required")
		}
		if !user.IsAdmin {
			return models.NewForbiddenError("Admin access required")
		}
		return c.Next()
	}
}

// optionalUser resolves the caller when a usable token is supplied and
// otherwise lets the request through anonymously.
func (s *Server) optionalUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Next()
		}
		if user, _, err := s.userService.Authenticate(c.UserContext(), token); err == nil {
			s.setIdentity(c, user)
		}
		return c.Next()
	}
}

func (s *Server) setIdentity(c *fiber.Ctx, user *models.User) {
	c.Locals(localUserID, user.ID)
	c.Locals(localUser, user)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(middleware.WithUser(c.UserContext(), user))
	observability.AddTraceAttributesToContext(c.UserContext(),
		attribute.Int64("user.id", int64(user.ID)),
		attribute.Bool("user.admin", user.IsAdmin),
	)
}

// currentUser returns the authenticated user or nil for anonymous requests.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// viewerID returns the caller's id, 0 when anonymous.
func viewerID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}

func currentClaims(c *fiber.Ctx) *middleware.TokenClaims {
	claims, _ := c.Locals(localClaims).(*middleware.TokenClaims)
	return claims
}
