package service

import (
	"context"

	"melodia/internal/cache"
	"melodia/internal/models"
	"melodia/internal/observability"
	"melodia/internal/repository"
	"melodia/internal/validation"
)

// ArtistService provides artist catalog management and follows.
type ArtistService struct {
	artists repository.ArtistRepository
	songs   repository.SongRepository
	albums  repository.AlbumRepository
	store   *cache.Store
}

// NewArtistService returns a new ArtistService.
func NewArtistService(
	artists repository.ArtistRepository,
	songs repository.SongRepository,
	albums repository.AlbumRepository,
	store *cache.Store,
) *ArtistService {
	return &ArtistService{artists: artists, songs: songs, albums: albums, store: store}
}

func (s *ArtistService) List(ctx context.Context, q validation.ListQuery) ([]models.Artist, int64, error) {
	return s.artists.List(ctx, repository.ArtistFilter{
		Search:   q.Search,
		Verified: q.Verified,
		Page:     pageOf(q),
	})
}

// Top returns the most followed artists.
func (s *ArtistService) Top(ctx context.Context, limit int) ([]models.Artist, error) {
	return s.artists.Top(ctx, clampLimit(limit))
}

// Get returns the artist with song and album counts, served from cache when possible.
func (s *ArtistService) Get(ctx context.Context, id uint) (*models.Artist, error) {
	return cache.Aside(ctx, s.store, "artist", cache.ArtistKey(id), cache.ArtistTTL,
		func(ctx context.Context) (*models.Artist, error) {
			return s.artists.GetWithCounts(ctx, id)
		})
}

func (s *ArtistService) Songs(ctx context.Context, id uint, q validation.ListQuery) ([]models.Song, int64, error) {
	if err := s.ensureExists(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.songs.ListByArtist(ctx, id, pageOf(q))
}

func (s *ArtistService) Albums(ctx context.Context, id uint, q validation.ListQuery) ([]models.Album, int64, error) {
	if err := s.ensureExists(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.albums.ListByArtist(ctx, id, pageOf(q))
}

func (s *ArtistService) Create(ctx context.Context, in validation.ArtistInput) (*models.Artist, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "artist", "Create")
	defer span.End()

	artist := &models.Artist{
		Name:               in.Name,
		Bio:                in.Bio,
		DateOfBirth:        in.DateOfBirth,
		Image:              in.Image,
		VerificationStatus: in.VerificationStatus,
	}
	if err := s.artists.Create(ctx, artist); err != nil {
		return nil, err
	}
	observability.LogServiceCall(ctx, "artist", "create", map[string]interface{}{"artist_id": artist.ID})
	return artist, nil
}

func (s *ArtistService) Update(ctx context.Context, id uint, changes validation.Changes) (*models.Artist, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "artist", "Update")
	defer span.End()

	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	artist, err := s.artists.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	s.store.InvalidateArtist(ctx, id)
	observability.LogServiceCall(ctx, "artist", "update", map[string]interface{}{"artist_id": id, "fields": len(changes)})
	return artist, nil
}

// Delete removes the artist together with its songs and albums.
func (s *ArtistService) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "artist", "Delete")
	defer span.End()

	songs, _, err := s.songs.ListByArtist(ctx, id, repository.Page{})
	if err != nil {
		return err
	}
	albums, _, err := s.albums.ListByArtist(ctx, id, repository.Page{})
	if err != nil {
		return err
	}

	if err := s.artists.Delete(ctx, id); err != nil {
		return err
	}

	s.store.InvalidateArtist(ctx, id)
	s.store.InvalidateSongs(ctx, songIDs(songs)...)
	for _, album := range albums {
		s.store.InvalidateAlbum(ctx, album.ID)
	}
	observability.LogServiceCall(ctx, "artist", "delete", map[string]interface{}{
		"artist_id": id, "songs": len(songs), "albums": len(albums),
	})
	return nil
}

func (s *ArtistService) Follow(ctx context.Context, userID, artistID uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "artist", "Follow")
	defer span.End()

	if err := s.ensureExists(ctx, artistID); err != nil {
		return err
	}
	if err := s.artists.Follow(ctx, userID, artistID); err != nil {
		return err
	}
	s.store.InvalidateArtist(ctx, artistID)
	return nil
}

func (s *ArtistService) Unfollow(ctx context.Context, userID, artistID uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "artist", "Unfollow")
	defer span.End()

	if err := s.ensureExists(ctx, artistID); err != nil {
		return err
	}
	if err := s.artists.Unfollow(ctx, userID, artistID); err != nil {
		return err
	}
	s.store.InvalidateArtist(ctx, artistID)
	return nil
}

func (s *ArtistService) ensureExists(ctx context.Context, id uint) error {
	ok, err := s.artists.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Artist", id)
	}
	return nil
}

// clampLimit applies the list default and cap to an already-parsed limit.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return validation.DefaultLimit
	case limit > validation.MaxLimit:
		return validation.MaxLimit
	default:
		return limit
	}
}
