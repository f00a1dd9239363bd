package server

import (
	"melodia/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListAlbums handles GET /api/albums
func (s *Server) ListAlbums(c *fiber.Ctx) error {
	q := listQuery(c)
	albums, total, err := s.albumService.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("albums", albums, q, total))
}

// GetAlbum handles GET /api/albums/:id
func (s *Server) GetAlbum(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	album, err := s.albumService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"album": album})
}

// CreateAlbum handles POST /api/albums (admin)
func (s *Server) CreateAlbum(c *fiber.Ctx) error {
	payload, err := s.readPayload(c, albumCover)
	if err != nil {
		return err
	}
	in, err := validation.ValidateAlbumCreate(payload)
	if err != nil {
		return err
	}

	album, err := s.albumService.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"album": album})
}

// UpdateAlbum handles PUT /api/albums/:id (admin)
func (s *Server) UpdateAlbum(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	payload, err := s.readPayload(c, albumCover)
	if err != nil {
		return err
	}
	changes, err := validation.ValidateAlbumUpdate(payload)
	if err != nil {
		return err
	}

	album, err := s.albumService.Update(c.UserContext(), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"album": album})
}

// DeleteAlbum handles DELETE /api/albums/:id (admin)
func (s *Server) DeleteAlbum(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.albumService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(message("Album deleted successfully"))
}

// AddAlbumSongs handles POST /api/albums/:id/songs (admin)
// @Summary Add songs to an album
// @Description Every song must belong to the album's artist; otherwise nothing is changed.
// @Tags albums
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Album ID"
// @Param request body object{songIds=[]int} true "Song IDs"
// @Success 200 {object} object{album=models.Album}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /albums/{id}/songs [post]
func (s *Server) AddAlbumSongs(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	payload, err := s.readPayload(c)
	if err != nil {
		return err
	}
	ids, err := validation.ValidateIDList(payload, "songIds")
	if err != nil {
		return err
	}

	album, err := s.albumService.AddSongs(c.UserContext(), id, ids)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"album": album})
}

// RemoveAlbumSong handles DELETE /api/albums/:id/songs/:songId (admin)
func (s *Server) RemoveAlbumSong(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	songID, err := parseID(c, "songId")
	if err != nil {
		return err
	}

	album, err := s.albumService.RemoveSong(c.UserContext(), id, songID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"album": album})
}
