package service

import (
	"context"

	"melodia/internal/cache"
	"melodia/internal/featureflags"
	"melodia/internal/models"
	"melodia/internal/observability"
	"melodia/internal/repository"
	"melodia/internal/validation"
)

// SongService provides song catalog management, likes and play counts.
type SongService struct {
	songs   repository.SongRepository
	artists repository.ArtistRepository
	albums  repository.AlbumRepository
	store   *cache.Store
	flags   *featureflags.Manager
}

// NewSongService returns a new SongService.
func NewSongService(
	songs repository.SongRepository,
	artists repository.ArtistRepository,
	albums repository.AlbumRepository,
	store *cache.Store,
	flags *featureflags.Manager,
) *SongService {
	return &SongService{songs: songs, artists: artists, albums: albums, store: store, flags: flags}
}

func (s *SongService) List(ctx context.Context, q validation.ListQuery) ([]models.Song, int64, error) {
	return s.songs.List(ctx, repository.SongFilter{
		Search:   q.Search,
		Genre:    q.Genre,
		ArtistID: q.ArtistID,
		Page:     pageOf(q),
	})
}

// Top returns the most played songs. limit falls back to 10 and is capped at 100.
func (s *SongService) Top(ctx context.Context, limit int) ([]models.Song, error) {
	return s.songs.Top(ctx, clampLimit(limit))
}

func (s *SongService) NewReleases(ctx context.Context, limit int) ([]models.Song, error) {
	return s.songs.NewReleases(ctx, clampLimit(limit))
}

func (s *SongService) Get(ctx context.Context, id uint) (*models.Song, error) {
	return cache.Aside(ctx, s.store, "song", cache.SongKey(id), cache.SongTTL,
		func(ctx context.Context) (*models.Song, error) {
			return s.songs.GetByID(ctx, id)
		})
}

func (s *SongService) Create(ctx context.Context, in validation.SongInput) (*models.Song, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "song", "Create")
	defer span.End()

	if err := s.checkOwnership(ctx, in.ArtistID, in.AlbumID); err != nil {
		return nil, err
	}

	song := &models.Song{
		Title:       in.Title,
		ArtistID:    in.ArtistID,
		AlbumID:     in.AlbumID,
		Duration:    in.Duration,
		AudioURL:    in.AudioURL,
		CoverImage:  in.CoverImage,
		Genre:       in.Genre,
		ReleaseDate: in.ReleaseDate,
		Lyrics:      in.Lyrics,
		IsExplicit:  in.IsExplicit,
	}
	if err := s.songs.Create(ctx, song); err != nil {
		return nil, err
	}
	s.touchParents(ctx, song.ArtistID, song.AlbumID)
	observability.LogServiceCall(ctx, "song", "create", map[string]interface{}{"song_id": song.ID})

	return s.songs.GetByID(ctx, song.ID)
}

// Update applies changes. When the artist or album changes, the resulting
// pair is checked so a song never sits on another artist's album.
func (s *SongService) Update(ctx context.Context, id uint, changes validation.Changes) (*models.Song, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "song", "Update")
	defer span.End()

	current, err := s.songs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if changes.Has("artist_id") || changes.Has("album_id") {
		artistID := current.ArtistID
		if v, ok := changes["artist_id"].(uint); ok {
			artistID = v
		}
		albumID := current.AlbumID
		if changes.Has("album_id") {
			albumID = nil
			if v, ok := changes["album_id"].(uint); ok {
				albumID = &v
			}
		}
		if err := s.checkOwnership(ctx, artistID, albumID); err != nil {
			return nil, err
		}
	}

	song, err := s.songs.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateSongs(ctx, id)
	s.touchParents(ctx, current.ArtistID, current.AlbumID)
	s.touchParents(ctx, song.ArtistID, song.AlbumID)
	observability.LogServiceCall(ctx, "song", "update", map[string]interface{}{"song_id": id, "fields": len(changes)})
	return song, nil
}

func (s *SongService) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "song", "Delete")
	defer span.End()

	current, err := s.songs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.songs.Delete(ctx, id); err != nil {
		return err
	}
	s.store.InvalidateSongs(ctx, id)
	s.touchParents(ctx, current.ArtistID, current.AlbumID)
	observability.LogServiceCall(ctx, "song", "delete", map[string]interface{}{"song_id": id})
	return nil
}

func (s *SongService) Like(ctx context.Context, userID, songID uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "song", "Like")
	defer span.End()

	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		return err
	}
	if err := s.songs.Like(ctx, userID, songID); err != nil {
		return err
	}
	s.invalidateCounters(ctx, song)
	return nil
}

func (s *SongService) Unlike(ctx context.Context, userID, songID uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "song", "Unlike")
	defer span.End()

	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		return err
	}
	if err := s.songs.Unlike(ctx, userID, songID); err != nil {
		return err
	}
	s.invalidateCounters(ctx, song)
	return nil
}

// Play records a play for the song. With play tracking disabled the song is
// only checked for existence and its current count returned.
func (s *SongService) Play(ctx context.Context, userID, songID uint) (int, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "song", "Play")
	defer span.End()

	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		return 0, err
	}
	if !s.flags.Enabled(featureflags.PlayTracking, userID) {
		return song.PlayCount, nil
	}
	count, err := s.songs.IncrementPlayCount(ctx, songID)
	if err != nil {
		return 0, err
	}
	s.invalidateCounters(ctx, song)
	return count, nil
}

// invalidateCounters drops cached entries that embed the song's like or play
// count: the song itself and the album that lists it.
func (s *SongService) invalidateCounters(ctx context.Context, song *models.Song) {
	s.store.InvalidateSongs(ctx, song.ID)
	if song.AlbumID != nil {
		s.store.InvalidateAlbum(ctx, *song.AlbumID)
	}
}

// checkOwnership verifies the artist exists and, when albumID is set, that
// the album exists and belongs to that artist.
func (s *SongService) checkOwnership(ctx context.Context, artistID uint, albumID *uint) error {
	ok, err := s.artists.Exists(ctx, artistID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Artist", artistID)
	}
	if albumID == nil {
		return nil
	}
	album, err := s.albums.GetByID(ctx, *albumID)
	if err != nil {
		return err
	}
	if album.ArtistID != artistID {
		return models.NewValidationError("Album does not belong to the song's artist")
	}
	return nil
}

func (s *SongService) touchParents(ctx context.Context, artistID uint, albumID *uint) {
	s.store.InvalidateArtist(ctx, artistID)
	if albumID != nil {
		s.store.InvalidateAlbum(ctx, *albumID)
	}
}
