package repository

import (
	"context"

	"melodia/internal/models"
	"melodia/internal/observability"

	"gorm.io/gorm"
)

// ArtistFilter narrows artist listings.
type ArtistFilter struct {
	Search   string
	Verified *bool
	Page
}

// ArtistRepository defines persistence operations for artists and their followers.
type ArtistRepository interface {
	List(ctx context.Context, filter ArtistFilter) ([]models.Artist, int64, error)
	Top(ctx context.Context, limit int) ([]models.Artist, error)
	GetByID(ctx context.Context, id uint) (*models.Artist, error)
	GetWithCounts(ctx context.Context, id uint) (*models.Artist, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, artist *models.Artist) error
	Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Artist, error)
	Delete(ctx context.Context, id uint) error
	Follow(ctx context.Context, userID, artistID uint) error
	Unfollow(ctx context.Context, userID, artistID uint) error
	ListFollowedBy(ctx context.Context, userID uint, page Page) ([]models.Artist, int64, error)
}

type artistRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewArtistRepository returns a new ArtistRepository implementation.
func NewArtistRepository(db *gorm.DB) ArtistRepository {
	return &artistRepository{db: db, logger: observability.NewRepoLogger("artists")}
}

func (r *artistRepository) List(ctx context.Context, filter ArtistFilter) ([]models.Artist, int64, error) {
	defer observability.TrackQuery("list", "artists")()

	q := r.db.WithContext(ctx).Model(&models.Artist{})
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	if filter.Verified != nil {
		q = q.Where("verification_status = ?", *filter.Verified)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var artists []models.Artist
	if err := filter.apply(q.Order("name ASC").Order("id ASC")).Find(&artists).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return artists, total, nil
}

func (r *artistRepository) Top(ctx context.Context, limit int) ([]models.Artist, error) {
	var artists []models.Artist
	err := r.db.WithContext(ctx).
		Order("follower_count DESC").Order("id ASC").
		Limit(limit).
		Find(&artists).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return artists, nil
}

func (r *artistRepository) GetByID(ctx context.Context, id uint) (*models.Artist, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "GetByID", "artists")
	defer span.End()

	var artist models.Artist
	if err := r.db.WithContext(ctx).First(&artist, id).Error; err != nil {
		return nil, notFoundOr(err, "Artist", id)
	}
	return &artist, nil
}

func (r *artistRepository) GetWithCounts(ctx context.Context, id uint) (*models.Artist, error) {
	artist, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Song{}).Where("artist_id = ?", id).Count(&artist.SongCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.Album{}).Where("artist_id = ?", id).Count(&artist.AlbumCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return artist, nil
}

func (r *artistRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Artist{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *artistRepository) Create(ctx context.Context, artist *models.Artist) error {
	if err := r.db.WithContext(ctx).Create(artist).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"id": artist.ID, "name": artist.Name})
	return nil
}

func (r *artistRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Artist, error) {
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Artist{ID: id}).Updates(changes)
		if res.Error != nil {
			r.logger.LogError(ctx, res.Error, "update")
			return nil, models.NewInternalError(res.Error)
		}
		r.logger.LogUpdate(ctx, map[string]interface{}{"id": id, "fields": len(changes)})
	}
	return r.GetByID(ctx, id)
}

// Delete removes the artist; songs, albums and follows go with it through ON DELETE CASCADE.
func (r *artistRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Artist{}, id)
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Artist", id)
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

func (r *artistRepository) Follow(ctx context.Context, userID, artistID uint) error {
	return artistFollows.add(ctx, r.db, artistID, &models.UserFollowedArtist{UserID: userID, ArtistID: artistID})
}

func (r *artistRepository) Unfollow(ctx context.Context, userID, artistID uint) error {
	return artistFollows.remove(ctx, r.db, artistID, &models.UserFollowedArtist{},
		"user_id = ? AND artist_id = ?", userID, artistID)
}

func (r *artistRepository) ListFollowedBy(ctx context.Context, userID uint, page Page) ([]models.Artist, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Artist{}).
		Joins("JOIN user_followed_artists ufa ON ufa.artist_id = artists.id").
		Where("ufa.user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var artists []models.Artist
	if err := page.apply(q.Order("ufa.created_at DESC").Order("artists.id ASC")).Find(&artists).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return artists, total, nil
}
