package server

import (
	"melodia/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListArtists handles GET /api/artists
// @Summary List artists
// @Tags artists
// @Produce json
// @Param search query string false "Name fragment"
// @Param verified query bool false "Only verified (or unverified) artists"
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} object{artists=[]models.Artist}
// @Router /artists [get]
func (s *Server) ListArtists(c *fiber.Ctx) error {
	q := listQuery(c)
	artists, total, err := s.artistService.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("artists", artists, q, total))
}

// TopArtists handles GET /api/artists/top
func (s *Server) TopArtists(c *fiber.Ctx) error {
	artists, err := s.artistService.Top(c.UserContext(), limitQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"artists": artists})
}

// GetArtist handles GET /api/artists/:id
func (s *Server) GetArtist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	artist, err := s.artistService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"artist": artist})
}

// GetArtistSongs handles GET /api/artists/:id/songs
func (s *Server) GetArtistSongs(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	q := listQuery(c)
	songs, total, err := s.artistService.Songs(c.UserContext(), id, q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("songs", songs, q, total))
}

// GetArtistAlbums handles GET /api/artists/:id/albums
func (s *Server) GetArtistAlbums(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	q := listQuery(c)
	albums, total, err := s.artistService.Albums(c.UserContext(), id, q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("albums", albums, q, total))
}

// CreateArtist handles POST /api/artists (admin)
// @Summary Create an artist
// @Tags artists
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file false "Artist image"
// @Success 201 {object} object{artist=models.Artist}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /artists [post]
func (s *Server) CreateArtist(c *fiber.Ctx) error {
	payload, err := s.readPayload(c, artistImage)
	if err != nil {
		return err
	}
	in, err := validation.ValidateArtistCreate(payload)
	if err != nil {
		return err
	}

	artist, err := s.artistService.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"artist": artist})
}

// UpdateArtist handles PUT /api/artists/:id (admin)
func (s *Server) UpdateArtist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	payload, err := s.readPayload(c, artistImage)
	if err != nil {
		return err
	}
	changes, err := validation.ValidateArtistUpdate(payload)
	if err != nil {
		return err
	}

	artist, err := s.artistService.Update(c.UserContext(), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"artist": artist})
}

// DeleteArtist handles DELETE /api/artists/:id (admin)
func (s *Server) DeleteArtist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.artistService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(message("Artist deleted successfully"))
}

// FollowArtist handles POST /api/artists/:id/follow
func (s *Server) FollowArtist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.artistService.Follow(c.UserContext(), viewerID(c), id); err != nil {
		return err
	}
	return c.JSON(message("Artist followed successfully"))
}

// UnfollowArtist handles DELETE /api/artists/:id/follow
func (s *Server) UnfollowArtist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.artistService.Unfollow(c.UserContext(), viewerID(c), id); err != nil {
		return err
	}
	return c.JSON(message("Artist unfollowed successfully"))
}
