package service

import (
	"context"
	"fmt"
	"strings"

	"melodia/internal/models"
	"melodia/internal/observability"
	"melodia/internal/repository"
	"melodia/internal/validation"
)

// PlaylistService enforces playlist ownership and collaboration rules.
type PlaylistService struct {
	playlists repository.PlaylistRepository
	songs     repository.SongRepository
	users     repository.UserRepository
}

// NewPlaylistService returns a new PlaylistService.
func NewPlaylistService(
	playlists repository.PlaylistRepository,
	songs repository.SongRepository,
	users repository.UserRepository,
) *PlaylistService {
	return &PlaylistService{playlists: playlists, songs: songs, users: users}
}

func (s *PlaylistService) Create(ctx context.Context, userID uint, in validation.PlaylistInput) (*models.Playlist, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "playlist", "Create")
	defer span.End()

	playlist := &models.Playlist{
		Name:        in.Name,
		Description: in.Description,
		CoverImage:  in.CoverImage,
		IsPublic:    in.IsPublic,
		CreatorID:   userID,
	}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, err
	}
	observability.LogServiceCall(ctx, "playlist", "create", map[string]interface{}{"playlist_id": playlist.ID})
	return s.detail(ctx, playlist.ID)
}

// Get returns the playlist with its songs and collaborators. Private
// playlists are only visible to the creator and collaborators; viewerID is 0
// for anonymous requests.
func (s *PlaylistService) Get(ctx context.Context, viewerID, id uint) (*models.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !playlist.IsPublic {
		canView, err := s.canEdit(ctx, playlist, viewerID)
		if err != nil {
			return nil, err
		}
		if !canView {
			return nil, models.NewForbiddenError("This playlist is private")
		}
	}
	return s.fill(ctx, playlist)
}

func (s *PlaylistService) ListPublic(ctx context.Context, q validation.ListQuery) ([]models.Playlist, int64, error) {
	return s.playlists.ListPublic(ctx, q.Search, pageOf(q))
}

// ListMine returns playlists the user created or collaborates on.
func (s *PlaylistService) ListMine(ctx context.Context, userID uint, q validation.ListQuery) ([]models.Playlist, int64, error) {
	return s.playlists.ListForUser(ctx, userID, pageOf(q))
}

// CheckCreator reports a 404 or 403 before the caller does any work, such as
// storing an uploaded cover, on behalf of someone who cannot update id.
func (s *PlaylistService) CheckCreator(ctx context.Context, userID, id uint) error {
	_, err := s.requireCreator(ctx, userID, id, "update")
	return err
}

func (s *PlaylistService) Update(ctx context.Context, userID, id uint, changes validation.Changes) (*models.Playlist, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "playlist", "Update")
	defer span.End()

	if _, err := s.requireCreator(ctx, userID, id, "update"); err != nil {
		return nil, err
	}
	if _, err := s.playlists.Update(ctx, id, changes); err != nil {
		return nil, err
	}
	observability.LogServiceCall(ctx, "playlist", "update", map[string]interface{}{"playlist_id": id, "fields": len(changes)})
	return s.detail(ctx, id)
}

func (s *PlaylistService) Delete(ctx context.Context, userID, id uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "playlist", "Delete")
	defer span.End()

	if _, err := s.requireCreator(ctx, userID, id, "delete"); err != nil {
		return err
	}
	if err := s.playlists.Delete(ctx, id); err != nil {
		return err
	}
	observability.LogServiceCall(ctx, "playlist", "delete", map[string]interface{}{"playlist_id": id})
	return nil
}

// AddSongs appends songs for the creator or a collaborator. Every id must
// exist; songs already in the playlist are skipped.
func (s *PlaylistService) AddSongs(ctx context.Context, userID, id uint, songIDs []uint) (*models.Playlist, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "playlist", "AddSongs")
	defer span.End()

	if _, err := s.requireEditor(ctx, userID, id); err != nil {
		return nil, err
	}
	if len(songIDs) == 0 {
		return nil, models.NewValidationError("songIds must be a non-empty array")
	}
	missing, err := s.songs.MissingIDs(ctx, songIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, models.NewNotFoundError("Songs", joinIDs(missing))
	}
	added, err := s.playlists.AddSongs(ctx, id, songIDs)
	if err != nil {
		return nil, err
	}
	observability.LogServiceCall(ctx, "playlist", "add_songs", map[string]interface{}{"playlist_id": id, "added": added})
	return s.detail(ctx, id)
}

func (s *PlaylistService) RemoveSongs(ctx context.Context, userID, id uint, songIDs []uint) (*models.Playlist, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "playlist", "RemoveSongs")
	defer span.End()

	if _, err := s.requireEditor(ctx, userID, id); err != nil {
		return nil, err
	}
	if len(songIDs) == 0 {
		return nil, models.NewValidationError("songIds must be a non-empty array")
	}
	removed, err := s.playlists.RemoveSongs(ctx, id, songIDs)
	if err != nil {
		return nil, err
	}
	observability.LogServiceCall(ctx, "playlist", "remove_songs", map[string]interface{}{"playlist_id": id, "removed": removed})
	return s.detail(ctx, id)
}

func (s *PlaylistService) AddCollaborator(ctx context.Context, userID, id, collaboratorID uint) (*models.Playlist, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "playlist", "AddCollaborator")
	defer span.End()

	playlist, err := s.requireCreator(ctx, userID, id, "manage collaborators of")
	if err != nil {
		return nil, err
	}
	if collaboratorID == playlist.CreatorID {
		return nil, models.NewValidationError("The creator cannot be added as a collaborator")
	}
	if _, err := s.users.GetByID(ctx, collaboratorID); err != nil {
		return nil, err
	}
	if err := s.playlists.AddCollaborator(ctx, id, collaboratorID); err != nil {
		return nil, err
	}
	observability.LogServiceCall(ctx, "playlist", "add_collaborator", map[string]interface{}{"playlist_id": id, "user_id": collaboratorID})
	return s.detail(ctx, id)
}

func (s *PlaylistService) RemoveCollaborator(ctx context.Context, userID, id, collaboratorID uint) (*models.Playlist, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "playlist", "RemoveCollaborator")
	defer span.End()

	if _, err := s.requireCreator(ctx, userID, id, "manage collaborators of"); err != nil {
		return nil, err
	}
	if err := s.playlists.RemoveCollaborator(ctx, id, collaboratorID); err != nil {
		return nil, err
	}
	observability.LogServiceCall(ctx, "playlist", "remove_collaborator", map[string]interface{}{"playlist_id": id, "user_id": collaboratorID})
	return s.detail(ctx, id)
}

// Follow is open to any user who can see the playlist.
func (s *PlaylistService) Follow(ctx context.Context, userID, id uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "playlist", "Follow")
	defer span.End()

	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.playlists.Follow(ctx, userID, id)
}

func (s *PlaylistService) Unfollow(ctx context.Context, userID, id uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "playlist", "Unfollow")
	defer span.End()

	if _, err := s.playlists.GetByID(ctx, id); err != nil {
		return err
	}
	return s.playlists.Unfollow(ctx, userID, id)
}

func (s *PlaylistService) requireCreator(ctx context.Context, userID, id uint, action string) (*models.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist.CreatorID != userID {
		return nil, models.NewForbiddenError(fmt.Sprintf("Only the creator can %s this playlist", action))
	}
	return playlist, nil
}

func (s *PlaylistService) requireEditor(ctx context.Context, userID, id uint) (*models.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.canEdit(ctx, playlist, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewForbiddenError("Only the creator or a collaborator can change this playlist's songs")
	}
	return playlist, nil
}

func (s *PlaylistService) canEdit(ctx context.Context, playlist *models.Playlist, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	if playlist.CreatorID == userID {
		return true, nil
	}
	return s.playlists.IsCollaborator(ctx, playlist.ID, userID)
}

func (s *PlaylistService) detail(ctx context.Context, id uint) (*models.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.fill(ctx, playlist)
}

func (s *PlaylistService) fill(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error) {
	songs, err := s.playlists.Songs(ctx, playlist.ID)
	if err != nil {
		return nil, err
	}
	collaborators, err := s.playlists.Collaborators(ctx, playlist.ID)
	if err != nil {
		return nil, err
	}
	playlist.Songs = songs
	playlist.Collaborators = collaborators
	return playlist, nil
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
