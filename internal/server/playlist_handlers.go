package server

import (
	"melodia/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListPlaylists handles GET /api/playlists (public playlists only)
func (s *Server) ListPlaylists(c *fiber.Ctx) error {
	q := listQuery(c)
	playlists, total, err := s.playlistService.ListPublic(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("playlists", playlists, q, total))
}

// ListMyPlaylists handles GET /api/playlists/me (created or collaborating)
func (s *Server) ListMyPlaylists(c *fiber.Ctx) error {
	q := listQuery(c)
	playlists, total, err := s.playlistService.ListMine(c.UserContext(), viewerID(c), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("playlists", playlists, q, total))
}

// GetPlaylist handles GET /api/playlists/:id
// @Summary Get a playlist
// @Description Private playlists are visible to their creator and collaborators only.
// @Tags playlists
// @Produce json
// @Param id path int true "Playlist ID"
// @Success 200 {object} object{playlist=models.Playlist}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /playlists/{id} [get]
func (s *Server) GetPlaylist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	playlist, err := s.playlistService.Get(c.UserContext(), viewerID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"playlist": playlist})
}

// CreatePlaylist handles POST /api/playlists
func (s *Server) CreatePlaylist(c *fiber.Ctx) error {
	payload, err := s.readPayload(c, playlistCover)
	if err != nil {
		return err
	}
	in, err := validation.ValidatePlaylistCreate(payload)
	if err != nil {
		return err
	}

	playlist, err := s.playlistService.Create(c.UserContext(), viewerID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"playlist": playlist})
}

// UpdatePlaylist handles PUT /api/playlists/:id (creator)
func (s *Server) UpdatePlaylist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.playlistService.CheckCreator(c.UserContext(), viewerID(c), id); err != nil {
		return err
	}
	payload, err := s.readPayload(c, playlistCover)
	if err != nil {
		return err
	}
	changes, err := validation.ValidatePlaylistUpdate(payload)
	if err != nil {
		return err
	}

	playlist, err := s.playlistService.Update(c.UserContext(), viewerID(c), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"playlist": playlist})
}

// DeletePlaylist handles DELETE /api/playlists/:id (creator)
func (s *Server) DeletePlaylist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.playlistService.Delete(c.UserContext(), viewerID(c), id); err != nil {
		return err
	}
	return c.JSON(message("Playlist deleted successfully"))
}

// AddPlaylistSongs handles POST /api/playlists/:id/songs
// @Summary Add songs to a playlist
// @Description Creator or collaborator only. Songs already on the playlist are skipped.
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Playlist ID"
// @Param request body object{songIds=[]int} true "Song IDs"
// @Success 200 {object} object{playlist=models.Playlist}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /playlists/{id}/songs [post]
func (s *Server) AddPlaylistSongs(c *fiber.Ctx) error {
	id, ids, err := s.playlistSongIDs(c)
	if err != nil {
		return err
	}
	playlist, err := s.playlistService.AddSongs(c.UserContext(), viewerID(c), id, ids)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"playlist": playlist})
}

// RemovePlaylistSongs handles DELETE /api/playlists/:id/songs
func (s *Server) RemovePlaylistSongs(c *fiber.Ctx) error {
	id, ids, err := s.playlistSongIDs(c)
	if err != nil {
		return err
	}
	playlist, err := s.playlistService.RemoveSongs(c.UserContext(), viewerID(c), id, ids)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"playlist": playlist})
}

func (s *Server) playlistSongIDs(c *fiber.Ctx) (uint, []uint, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return 0, nil, err
	}
	payload, err := s.readPayload(c)
	if err != nil {
		return 0, nil, err
	}
	ids, err := validation.ValidateIDList(payload, "songIds")
	if err != nil {
		return 0, nil, err
	}
	return id, ids, nil
}

// AddCollaborator handles POST /api/playlists/:id/collaborators (creator)
func (s *Server) AddCollaborator(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	payload, err := s.readPayload(c)
	if err != nil {
		return err
	}
	collaboratorID, err := validation.ValidateID(payload, "userId")
	if err != nil {
		return err
	}

	playlist, err := s.playlistService.AddCollaborator(c.UserContext(), viewerID(c), id, collaboratorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"playlist": playlist})
}

// RemoveCollaborator handles DELETE /api/playlists/:id/collaborators/:userId (creator)
func (s *Server) RemoveCollaborator(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	collaboratorID, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	playlist, err := s.playlistService.RemoveCollaborator(c.UserContext(), viewerID(c), id, collaboratorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"playlist": playlist})
}

// FollowPlaylist handles POST /api/playlists/:id/follow
func (s *Server) FollowPlaylist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.playlistService.Follow(c.UserContext(), viewerID(c), id); err != nil {
		return err
	}
	return c.JSON(message("Playlist followed successfully"))
}

// UnfollowPlaylist handles DELETE /api/playlists/:id/follow
func (s *Server) UnfollowPlaylist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.playlistService.Unfollow(c.UserContext(), viewerID(c), id); err != nil {
		return err
	}
	return c.JSON(message("Playlist unfollowed successfully"))
}
