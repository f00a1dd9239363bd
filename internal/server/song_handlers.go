package server

import (
	"melodia/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListSongs handles GET /api/songs
// @Summary List songs
// @Tags songs
// @Produce json
// @Param search query string false "Title fragment"
// @Param genre query string false "Genre"
// @Param artistId query int false "Artist ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} object{songs=[]models.Song}
// @Router /songs [get]
func (s *Server) ListSongs(c *fiber.Ctx) error {
	q := listQuery(c)
	songs, total, err := s.songService.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("songs", songs, q, total))
}

// TopSongs handles GET /api/songs/top
// @Summary Most played songs
// @Tags songs
// @Produce json
// @Param limit query int false "Number of songs (default 10, max 100)"
// @Success 200 {object} object{songs=[]models.Song}
// @Router /songs/top [get]
func (s *Server) TopSongs(c *fiber.Ctx) error {
	songs, err := s.songService.Top(c.UserContext(), limitQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"songs": songs})
}

// NewReleases handles GET /api/songs/new-releases
func (s *Server) NewReleases(c *fiber.Ctx) error {
	songs, err := s.songService.NewReleases(c.UserContext(), limitQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"songs": songs})
}

// GetSong handles GET /api/songs/:id
func (s *Server) GetSong(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	song, err := s.songService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"song": song})
}

// CreateSong handles POST /api/songs (admin)
// @Summary Create a song
// @Tags songs
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param audioUrl formData file false "Audio file (or an audioUrl string)"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} object{song=models.Song}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /songs [post]
func (s *Server) CreateSong(c *fiber.Ctx) error {
	payload, err := s.readPayload(c, songAudio, songCover)
	if err != nil {
		return err
	}
	in, err := validation.ValidateSongCreate(payload)
	if err != nil {
		return err
	}

	song, err := s.songService.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"song": song})
}

// UpdateSong handles PUT /api/songs/:id (admin)
func (s *Server) UpdateSong(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	payload, err := s.readPayload(c, songAudio, songCover)
	if err != nil {
		return err
	}
	changes, err := validation.ValidateSongUpdate(payload)
	if err != nil {
		return err
	}

	song, err := s.songService.Update(c.UserContext(), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"song": song})
}

// DeleteSong handles DELETE /api/songs/:id (admin)
func (s *Server) DeleteSong(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.songService.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(message("Song deleted successfully"))
}

// LikeSong handles POST /api/songs/:id/like
func (s *Server) LikeSong(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.songService.Like(c.UserContext(), viewerID(c), id); err != nil {
		return err
	}
	return c.JSON(message("Song liked successfully"))
}

// UnlikeSong handles DELETE /api/songs/:id/like
func (s *Server) UnlikeSong(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.songService.Unlike(c.UserContext(), viewerID(c), id); err != nil {
		return err
	}
	return c.JSON(message("Song unliked successfully"))
}

// PlaySong handles POST /api/songs/:id/play
func (s *Server) PlaySong(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	count, err := s.songService.Play(c.UserContext(), viewerID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"playCount": count})
}
