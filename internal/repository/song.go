package repository

import (
	"context"
	"strings"

	"melodia/internal/models"
	"melodia/internal/observability"

	"gorm.io/gorm"
)

// SongFilter narrows song listings.
type SongFilter struct {
	Search   string
	Genre    string
	ArtistID *uint
	Page
}

// SongRepository defines persistence operations for songs and likes.
type SongRepository interface {
	List(ctx context.Context, filter SongFilter) ([]models.Song, int64, error)
	Top(ctx context.Context, limit int) ([]models.Song, error)
	NewReleases(ctx context.Context, limit int) ([]models.Song, error)
	GetByID(ctx context.Context, id uint) (*models.Song, error)
	MissingIDs(ctx context.Context, ids []uint) ([]uint, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Song, error)
	ListByArtist(ctx context.Context, artistID uint, page Page) ([]models.Song, int64, error)
	ListByAlbum(ctx context.Context, albumID uint) ([]models.Song, error)
	Create(ctx context.Context, song *models.Song) error
	Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Song, error)
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, songID uint) error
	Unlike(ctx context.Context, userID, songID uint) error
	ListLikedBy(ctx context.Context, userID uint, page Page) ([]models.Song, int64, error)
	IncrementPlayCount(ctx context.Context, id uint) (int, error)
}

type songRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewSongRepository returns a new SongRepository implementation.
func NewSongRepository(db *gorm.DB) SongRepository {
	return &songRepository{db: db, logger: observability.NewRepoLogger("songs")}
}

func (r *songRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Artist").Preload("Album")
}

func (r *songRepository) List(ctx context.Context, filter SongFilter) ([]models.Song, int64, error) {
	defer observability.TrackQuery("list", "songs")()

	q := r.db.WithContext(ctx).Model(&models.Song{})
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

	var songs []models.Song
	err := filter.apply(q.Preload("Artist").Preload("Album").Order("created_at DESC").Order("id DESC")).
		Find(&songs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return songs, total, nil
}

func (r *songRepository) Top(ctx context.Context, limit int) ([]models.Song, error) {
	var songs []models.Song
	err := r.withRefs(ctx).
		Order("play_count DESC").Order("id ASC").
		Limit(limit).
		Find(&songs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return songs, nil
}

// NewReleases orders by release date, falling back to the creation time for
// songs without one.
func (r *songRepository) NewReleases(ctx context.Context, limit int) ([]models.Song, error) {
	var songs []models.Song
	err := r.withRefs(ctx).
		Order("COALESCE(release_date, created_at) DESC").Order("id DESC").
		Limit(limit).
		Find(&songs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return songs, nil
}

func (r *songRepository) GetByID(ctx context.Context, id uint) (*models.Song, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "GetByID", "songs")
	defer span.End()

	var song models.Song
	if err := r.withRefs(ctx).First(&song, id).Error; err != nil {
		return nil, notFoundOr(err, "Song", id)
	}
	return &song, nil
}

// MissingIDs returns the ids, in input order, that have no song row.
func (r *songRepository) MissingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := r.db.WithContext(ctx).Model(&models.Song{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	seen := make(map[uint]struct{}, len(found))
	for _, id := range found {
		seen[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *songRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Song, error) {
	var songs []models.Song
	if len(ids) == 0 {
		return songs, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&songs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return songs, nil
}

func (r *songRepository) ListByArtist(ctx context.Context, artistID uint, page Page) ([]models.Song, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Song{}).Where("artist_id = ?", artistID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var songs []models.Song
	err := page.apply(q.Preload("Album").Order("play_count DESC").Order("id ASC")).Find(&songs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return songs, total, nil
}

// ListByAlbum returns the album's songs in track order (creation order).
func (r *songRepository) ListByAlbum(ctx context.Context, albumID uint) ([]models.Song, error) {
	var songs []models.Song
	if err := r.db.WithContext(ctx).Where("album_id = ?", albumID).Order("id ASC").Find(&songs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return songs, nil
}

func (r *songRepository) Create(ctx context.Context, song *models.Song) error {
	if err := r.db.WithContext(ctx).Omit("Artist", "Album").Create(song).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"id": song.ID, "artist_id": song.ArtistID})
	return nil
}

func (r *songRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Song, error) {
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Song{ID: id}).Updates(changes)
		if res.Error != nil {
			r.logger.LogError(ctx, res.Error, "update")
			return nil, models.NewInternalError(res.Error)
		}
		r.logger.LogUpdate(ctx, map[string]interface{}{"id": id, "fields": len(changes)})
	}
	return r.GetByID(ctx, id)
}

func (r *songRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Song{}, id)
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Song", id)
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

func (r *songRepository) Like(ctx context.Context, userID, songID uint) error {
	return songLikes.add(ctx, r.db, songID, &models.UserLikedSong{UserID: userID, SongID: songID})
}

func (r *songRepository) Unlike(ctx context.Context, userID, songID uint) error {
	return songLikes.remove(ctx, r.db, songID, &models.UserLikedSong{},
		"user_id = ? AND song_id = ?", userID, songID)
}

func (r *songRepository) ListLikedBy(ctx context.Context, userID uint, page Page) ([]models.Song, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Song{}).
		Joins("JOIN user_liked_songs uls ON uls.song_id = songs.id").
		Where("uls.user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var songs []models.Song
	err := page.apply(q.Preload("Artist").Preload("Album").Order("uls.created_at DESC").Order("songs.id DESC")).
		Find(&songs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return songs, total, nil
}

// IncrementPlayCount bumps the play counter and returns the new value.
func (r *songRepository) IncrementPlayCount(ctx context.Context, id uint) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Song{}).Where("id = ?", id).
			UpdateColumn("play_count", gorm.Expr("play_count + 1"))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Song", id)
		}
		if err := tx.Model(&models.Song{}).Select("play_count").Where("id = ?", id).Scan(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	observability.SongPlays.Inc()
	return count, nil
}
