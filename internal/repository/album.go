package repository

import (
	"context"
	"fmt"
	"strings"

	"melodia/internal/models"
	"melodia/internal/observability"

	"gorm.io/gorm"
)

// AlbumFilter narrows album listings.
type AlbumFilter struct {
	Search   string
	Genre    string
	ArtistID *uint
	Page
}

// AlbumRepository defines persistence operations for albums and their track lists.
type AlbumRepository interface {
	List(ctx context.Context, filter AlbumFilter) ([]models.Album, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Album, error)
	GetWithSongs(ctx context.Context, id uint) (*models.Album, error)
	ListByArtist(ctx context.Context, artistID uint, page Page) ([]models.Album, int64, error)
	Create(ctx context.Context, album *models.Album) error
	Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Album, error)
	Delete(ctx context.Context, id uint) error
	CountForeignSongs(ctx context.Context, albumID, artistID uint) (int64, error)
	AddSongs(ctx context.Context, albumID uint, songIDs []uint) error
	RemoveSong(ctx context.Context, albumID, songID uint) error
}

type albumRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewAlbumRepository returns a new AlbumRepository implementation.
func NewAlbumRepository(db *gorm.DB) AlbumRepository {
	return &albumRepository{db: db, logger: observability.NewRepoLogger("albums")}
}

func (r *albumRepository) List(ctx context.Context, filter AlbumFilter) ([]models.Album, int64, error) {
	defer observability.TrackQuery("list", "albums")()

	q := r.db.WithContext(ctx).Model(&models.Album{})
	if filter.Search != "" {
		q = q.Where("LOWER(title) LIKE ?", likePattern(filter.Search))
	}
	if filter.Genre != "" {
		q = q.Where("LOWER(genre) = ?", strings.ToLower(filter.Genre))
	}
	if filter.ArtistID != nil {
		q = q.Where("artist_id = ?", *filter.ArtistID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var albums []models.Album
	err := filter.apply(q.Preload("Artist").Order("created_at DESC").Order("id DESC")).Find(&albums).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return albums, total, nil
}

func (r *albumRepository) GetByID(ctx context.Context, id uint) (*models.Album, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "GetByID", "albums")
	defer span.End()

	var album models.Album
	if err := r.db.WithContext(ctx).Preload("Artist").First(&album, id).Error; err != nil {
		return nil, notFoundOr(err, "Album", id)
	}
	return &album, nil
}

// GetWithSongs loads the album, its artist and its songs in track order.
func (r *albumRepository) GetWithSongs(ctx context.Context, id uint) (*models.Album, error) {
	album, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	songs := []models.Song{}
	if err := r.db.WithContext(ctx).Where("album_id = ?", id).Order("id ASC").Find(&songs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	album.Songs = songs
	return album, nil
}

func (r *albumRepository) ListByArtist(ctx context.Context, artistID uint, page Page) ([]models.Album, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Album{}).Where("artist_id = ?", artistID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var albums []models.Album
	err := page.apply(q.Order("release_date DESC").Order("id DESC")).Find(&albums).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return albums, total, nil
}

func (r *albumRepository) Create(ctx context.Context, album *models.Album) error {
	if err := r.db.WithContext(ctx).Omit("Artist").Create(album).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"id": album.ID, "artist_id": album.ArtistID})
	return nil
}

func (r *albumRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Album, error) {
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Album{ID: id}).Updates(changes)
		if res.Error != nil {
			r.logger.LogError(ctx, res.Error, "update")
			return nil, models.NewInternalError(res.Error)
		}
		r.logger.LogUpdate(ctx, map[string]interface{}{"id": id, "fields": len(changes)})
	}
	return r.GetByID(ctx, id)
}

// Delete removes the album. Its songs stay in the catalog with album_id
// cleared by ON DELETE SET NULL.
func (r *albumRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Album{}, id)
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Album", id)
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

// CountForeignSongs counts the album's songs whose artist is not artistID.
func (r *albumRepository) CountForeignSongs(ctx context.Context, albumID, artistID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Song{}).
		Where("album_id = ? AND artist_id <> ?", albumID, artistID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// AddSongs assigns every song to the album in one transaction. Missing songs
// fail with NotFound and songs by another artist fail validation; in both
// cases nothing is written.
func (r *albumRepository) AddSongs(ctx context.Context, albumID uint, songIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var album models.Album
		if err := tx.First(&album, albumID).Error; err != nil {
			return notFoundOr(err, "Album", albumID)
		}

		var songs []models.Song
		if err := tx.Where("id IN ?", songIDs).Find(&songs).Error; err != nil {
			return models.NewInternalError(err)
		}
		byID := make(map[uint]models.Song, len(songs))
		for _, s := range songs {
			byID[s.ID] = s
		}

		var missing, foreign []string
		for _, id := range songIDs {
			s, ok := byID[id]
			switch {
			case !ok:
				missing = append(missing, fmt.Sprint(id))
			case s.ArtistID != album.ArtistID:
				foreign = append(foreign, fmt.Sprint(id))
			}
		}
		if len(missing) > 0 {
			return models.NewNotFoundError("Songs", strings.Join(missing, ", "))
		}
		if len(foreign) > 0 {
			return models.NewValidationError(fmt.Sprintf(
				"Songs %s do not belong to the album's artist", strings.Join(foreign, ", ")))
		}

		res := tx.Model(&models.Song{}).Where("id IN ?", songIDs).Update("album_id", albumID)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": albumID, "songs_added": len(songIDs)})
	return nil
}

// RemoveSong clears the song's album reference. The song itself is kept.
func (r *albumRepository) RemoveSong(ctx context.Context, albumID, songID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Song{}).
		Where("id = ? AND album_id = ?", songID, albumID).
		Update("album_id", nil)
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "remove_song")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(fmt.Sprintf("Song %d on album", songID), albumID)
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": albumID, "song_removed": songID})
	return nil
}
