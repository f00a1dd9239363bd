package server

import (
	"melodia/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/users/register
// @Summary Register a new user
// @Description Create an account and return a JWT token
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string,username=string,fullName=string} true "Registration data"
// @Success 201 {object} object{token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	payload, err := s.readPayload(c)
	if err != nil {
		return err
	}
	in, err := validation.ValidateRegister(payload)
	if err != nil {
		return err
	}

	result, err := s.userService.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": result.Token,
		"user":  result.User,
	})
}

// Login handles POST /api/users/login
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{token=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	payload, err := s.readPayload(c)
	if err != nil {
		return err
	}
	in, err := validation.ValidateLogin(payload)
	if err != nil {
		return err
	}

	result, err := s.userService.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token": result.Token,
		"user":  result.User,
	})
}

// Logout handles POST /api/users/logout
// @Summary Logout
// @Description Revoke the current access token
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.userService.Logout(c.UserContext(), currentClaims(c)); err != nil {
		return err
	}
	return c.JSON(message("Logged out successfully"))
}

// GetMe handles GET /api/users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": currentUser(c)})
}

// UpdateMe handles PUT /api/users/me
// @Summary Update my profile
// @Tags users
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file false "Profile picture"
// @Success 200 {object} object{user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	payload, err := s.readPayload(c, userImage)
	if err != nil {
		return err
	}
	changes, err := validation.ValidateUserUpdate(payload)
	if err != nil {
		return err
	}

	user, err := s.userService.Update(c.UserContext(), viewerID(c), changes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// DeleteMe handles DELETE /api/users/me
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	if err := s.userService.Delete(c.UserContext(), viewerID(c)); err != nil {
		return err
	}
	return c.JSON(message("Account deleted successfully"))
}

// GetLikedSongs handles GET /api/users/me/liked-songs
func (s *Server) GetLikedSongs(c *fiber.Ctx) error {
	q := listQuery(c)
	songs, total, err := s.userService.LikedSongs(c.UserContext(), viewerID(c), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("songs", songs, q, total))
}

// GetFollowedArtists handles GET /api/users/me/followed-artists
func (s *Server) GetFollowedArtists(c *fiber.Ctx) error {
	q := listQuery(c)
	artists, total, err := s.userService.FollowedArtists(c.UserContext(), viewerID(c), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("artists", artists, q, total))
}

// GetFollowedPlaylists handles GET /api/users/me/followed-playlists
func (s *Server) GetFollowedPlaylists(c *fiber.Ctx) error {
	q := listQuery(c)
	playlists, total, err := s.userService.FollowedPlaylists(c.UserContext(), viewerID(c), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("playlists", playlists, q, total))
}

// ListUsers handles GET /api/users (admin)
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Email or username fragment"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} object{users=[]models.User}
// @Failure 403 {object} models.ErrorResponse
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	q := listQuery(c)
	users, total, err := s.userService.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("users", users, q, total))
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	profile, err := s.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": profile})
}

// DeleteUser handles DELETE /api/users/:id (admin)
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.userService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(message("User deleted successfully"))
}
