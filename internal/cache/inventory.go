package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ArtistKeyPrefix = "artist:%d"
	SongKeyPrefix   = "song:%d"
	AlbumKeyPrefix  = "album:%d"
	revokedPrefix   = "revoked:%s"
)

const (
	ArtistTTL = 10 * time.Minute
	SongTTL   = 5 * time.Minute
	AlbumTTL  = 10 * time.Minute
)

func ArtistKey(artistID uint) string {
	return fmt.Sprintf(ArtistKeyPrefix, artistID)
}

func SongKey(songID uint) string {
	return fmt.Sprintf(SongKeyPrefix, songID)
}

func AlbumKey(albumID uint) string {
	return fmt.Sprintf(AlbumKeyPrefix, albumID)
}

func (s *Store) InvalidateArtist(ctx context.Context, artistID uint) {
	s.Invalidate(ctx, ArtistKey(artistID))
}

func (s *Store) InvalidateSongs(ctx context.Context, songIDs ...uint) {
	keys := make([]string, 0, len(songIDs))
	for _, id := range songIDs {
		keys = append(keys, SongKey(id))
	}
	s.Invalidate(ctx, keys...)
}

func (s *Store) InvalidateAlbum(ctx context.Context, albumID uint) {
	s.Invalidate(ctx, AlbumKey(albumID))
}

// RevokeToken blacklists a token id until its expiry.
func (s *Store) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if !s.Enabled() || tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, fmt.Sprintf(revokedPrefix, tokenID), 1, ttl).Err()
}

// IsTokenRevoked reports whether RevokeToken was called for tokenID.
func (s *Store) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !s.Enabled() || tokenID == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, fmt.Sprintf(revokedPrefix, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
