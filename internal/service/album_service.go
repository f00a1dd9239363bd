package service

import (
	"context"

	"melodia/internal/cache"
	"melodia/internal/models"
	"melodia/internal/observability"
	"melodia/internal/repository"
	"melodia/internal/validation"
)

// AlbumService provides album management and track assignment.
type AlbumService struct {
	albums  repository.AlbumRepository
	artists repository.ArtistRepository
	songs   repository.SongRepository
	store   *cache.Store
}

// NewAlbumService returns a new AlbumService.
func NewAlbumService(
	albums repository.AlbumRepository,
	artists repository.ArtistRepository,
	songs repository.SongRepository,
	store *cache.Store,
) *AlbumService {
	return &AlbumService{albums: albums, artists: artists, songs: songs, store: store}
}

func (s *AlbumService) List(ctx context.Context, q validation.ListQuery) ([]models.Album, int64, error) {
	return s.albums.List(ctx, repository.AlbumFilter{
		Search:   q.Search,
		Genre:    q.Genre,
		ArtistID: q.ArtistID,
		Page:     pageOf(q),
	})
}

// Get returns the album with its artist and songs.
func (s *AlbumService) Get(ctx context.Context, id uint) (*models.Album, error) {
	return cache.Aside(ctx, s.store, "album", cache.AlbumKey(id), cache.AlbumTTL,
		func(ctx context.Context) (*models.Album, error) {
			return s.albums.GetWithSongs(ctx, id)
		})
}

func (s *AlbumService) Create(ctx context.Context, in validation.AlbumInput) (*models.Album, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "album", "Create")
	defer span.End()

	if err := s.ensureArtist(ctx, in.ArtistID); err != nil {
		return nil, err
	}
	album := &models.Album{
		Title:       in.Title,
		ArtistID:    in.ArtistID,
		ReleaseDate: in.ReleaseDate,
		CoverImage:  in.CoverImage,
		Genre:       in.Genre,
		Description: in.Description,
	}
	if err := s.albums.Create(ctx, album); err != nil {
		return nil, err
	}
	s.store.InvalidateArtist(ctx, in.ArtistID)
	observability.LogServiceCall(ctx, "album", "create", map[string]interface{}{"album_id": album.ID})
	return s.albums.GetWithSongs(ctx, album.ID)
}

// Update applies changes. Moving the album to another artist is refused while
// it still holds songs of the current artist.
func (s *AlbumService) Update(ctx context.Context, id uint, changes validation.Changes) (*models.Album, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "album", "Update")
	defer span.End()

	current, err := s.albums.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if artistID, ok := changes["artist_id"].(uint); ok && artistID != current.ArtistID {
		if err := s.ensureArtist(ctx, artistID); err != nil {
			return nil, err
		}
		foreign, err := s.albums.CountForeignSongs(ctx, id, artistID)
		if err != nil {
			return nil, err
		}
		if foreign > 0 {
			return nil, models.NewValidationError("Album still contains songs by its current artist")
		}
	}

	if _, err := s.albums.Update(ctx, id, changes); err != nil {
		return nil, err
	}
	s.store.InvalidateAlbum(ctx, id)
	s.store.InvalidateArtist(ctx, current.ArtistID)
	observability.LogServiceCall(ctx, "album", "update", map[string]interface{}{"album_id": id, "fields": len(changes)})
	return s.albums.GetWithSongs(ctx, id)
}

// Delete removes the album; its songs stay and lose their album reference.
func (s *AlbumService) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "album", "Delete")
	defer span.End()

	current, err := s.albums.GetByID(ctx, id)
	if err != nil {
		return err
	}
	songs, err := s.songs.ListByAlbum(ctx, id)
	if err != nil {
		return err
	}
	if err := s.albums.Delete(ctx, id); err != nil {
		return err
	}
	s.store.InvalidateAlbum(ctx, id)
	s.store.InvalidateArtist(ctx, current.ArtistID)
	s.store.InvalidateSongs(ctx, songIDs(songs)...)
	observability.LogServiceCall(ctx, "album", "delete", map[string]interface{}{"album_id": id})
	return nil
}

// AddSongs puts every listed song on the album, or none of them.
func (s *AlbumService) AddSongs(ctx context.Context, albumID uint, ids []uint) (*models.Album, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "album", "AddSongs")
	defer span.End()

	if len(ids) == 0 {
		return nil, models.NewValidationError("songIds must be a non-empty array")
	}
	// Songs moved from another album leave a stale entry behind in its cache.
	previous, err := s.songs.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := s.albums.AddSongs(ctx, albumID, ids); err != nil {
		return nil, err
	}
	for _, song := range previous {
		if song.AlbumID != nil && *song.AlbumID != albumID {
			s.store.InvalidateAlbum(ctx, *song.AlbumID)
		}
	}
	s.store.InvalidateAlbum(ctx, albumID)
	s.store.InvalidateSongs(ctx, ids...)
	observability.LogServiceCall(ctx, "album", "add_songs", map[string]interface{}{"album_id": albumID, "songs": len(ids)})
	return s.albums.GetWithSongs(ctx, albumID)
}

func (s *AlbumService) RemoveSong(ctx context.Context, albumID, songID uint) (*models.Album, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "album", "RemoveSong")
	defer span.End()

	if _, err := s.albums.GetByID(ctx, albumID); err != nil {
		return nil, err
	}
	if err := s.albums.RemoveSong(ctx, albumID, songID); err != nil {
		return nil, err
	}
	s.store.InvalidateAlbum(ctx, albumID)
	s.store.InvalidateSongs(ctx, songID)
	return s.albums.GetWithSongs(ctx, albumID)
}

func (s *AlbumService) ensureArtist(ctx context.Context, id uint) error {
	ok, err := s.artists.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Artist", id)
	}
	return nil
}

func songIDs(songs []models.Song) []uint {
	ids := make([]uint, 0, len(songs))
	for _, song := range songs {
		ids = append(ids, song.ID)
	}
	return ids
}
