package repository

import (
	"context"
	"time"

	"melodia/internal/models"
	"melodia/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository defines persistence operations for playlists, their
// ordered songs, collaborators and followers.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id uint) (*models.Playlist, error)
	Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Playlist, error)
	Delete(ctx context.Context, id uint) error
	ListPublic(ctx context.Context, search string, page Page) ([]models.Playlist, int64, error)
	ListForUser(ctx context.Context, userID uint, page Page) ([]models.Playlist, int64, error)
	ListFollowedBy(ctx context.Context, userID uint, page Page) ([]models.Playlist, int64, error)
	Songs(ctx context.Context, playlistID uint) ([]models.Song, error)
	SongIDs(ctx context.Context, playlistID uint) ([]uint, error)
	Collaborators(ctx context.Context, playlistID uint) ([]models.PublicUser, error)
	IsCollaborator(ctx context.Context, playlistID, userID uint) (bool, error)
	AddSongs(ctx context.Context, playlistID uint, songIDs []uint) (int, error)
	RemoveSongs(ctx context.Context, playlistID uint, songIDs []uint) (int64, error)
	AddCollaborator(ctx context.Context, playlistID, userID uint) error
	RemoveCollaborator(ctx context.Context, playlistID, userID uint) error
	Follow(ctx context.Context, userID, playlistID uint) error
	Unfollow(ctx context.Context, userID, playlistID uint) error
}

type playlistRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewPlaylistRepository returns a new PlaylistRepository implementation.
func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db, logger: observability.NewRepoLogger("playlists")}
}

func (r *playlistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := r.db.WithContext(ctx).Omit("Creator").Create(playlist).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"id": playlist.ID, "creator_id": playlist.CreatorID})
	return nil
}

func (r *playlistRepository) GetByID(ctx context.Context, id uint) (*models.Playlist, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "GetByID", "playlists")
	defer span.End()

	var playlist models.Playlist
	if err := r.db.WithContext(ctx).Preload("Creator").First(&playlist, id).Error; err != nil {
		return nil, notFoundOr(err, "Playlist", id)
	}
	attachCreator(&playlist)
	return &playlist, nil
}

func (r *playlistRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.Playlist, error) {
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Playlist{ID: id}).Updates(changes)
		if res.Error != nil {
			r.logger.LogError(ctx, res.Error, "update")
			return nil, models.NewInternalError(res.Error)
		}
		r.logger.LogUpdate(ctx, map[string]interface{}{"id": id, "fields": len(changes)})
	}
	return r.GetByID(ctx, id)
}

func (r *playlistRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Playlist{}, id)
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Playlist", id)
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

func (r *playlistRepository) ListPublic(ctx context.Context, search string, page Page) ([]models.Playlist, int64, error) {
	defer observability.TrackQuery("list", "playlists")()

	q := r.db.WithContext(ctx).Model(&models.Playlist{}).Where("is_public = ?", true)
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(search))
	}
	return r.page(q, page, "follower_count DESC")
}

// ListForUser returns playlists the user created or collaborates on.
func (r *playlistRepository) ListForUser(ctx context.Context, userID uint, page Page) ([]models.Playlist, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Playlist{}).
		Where("creator_id = ? OR id IN (?)", userID,
			r.db.Model(&models.PlaylistCollaborator{}).Select("playlist_id").Where("user_id = ?", userID))
	return r.page(q, page, "updated_at DESC")
}

func (r *playlistRepository) ListFollowedBy(ctx context.Context, userID uint, page Page) ([]models.Playlist, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Playlist{}).
		Where("id IN (?)",
			r.db.Model(&models.UserFollowedPlaylist{}).Select("playlist_id").Where("user_id = ?", userID))
	return r.page(q, page, "updated_at DESC")
}

func (r *playlistRepository) page(q *gorm.DB, page Page, order string) ([]models.Playlist, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var playlists []models.Playlist
	err := page.apply(q.Preload("Creator").Order(order).Order("id DESC")).Find(&playlists).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	for i := range playlists {
		attachCreator(&playlists[i])
	}
	return playlists, total, nil
}

// Songs returns the playlist's songs ordered by position.
func (r *playlistRepository) Songs(ctx context.Context, playlistID uint) ([]models.Song, error) {
	songs := []models.Song{}
	err := r.db.WithContext(ctx).
		Joins("JOIN playlist_songs ps ON ps.song_id = songs.id").
		Where("ps.playlist_id = ?", playlistID).
		Preload("Artist").Preload("Album").
		Order("ps.position ASC").Order("songs.id ASC").
		Find(&songs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return songs, nil
}

func (r *playlistRepository) SongIDs(ctx context.Context, playlistID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.PlaylistSong{}).
		Where("playlist_id = ?", playlistID).
		Order("position ASC").
		Pluck("song_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *playlistRepository) Collaborators(ctx context.Context, playlistID uint) ([]models.PublicUser, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN playlist_collaborators pc ON pc.user_id = users.id").
		Where("pc.playlist_id = ?", playlistID).
		Order("pc.created_at ASC").Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

func (r *playlistRepository) IsCollaborator(ctx context.Context, playlistID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PlaylistCollaborator{}).
		Where("playlist_id = ? AND user_id = ?", playlistID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// AddSongs appends songs after the current last position. Songs already in
// the playlist are skipped. It returns how many rows were inserted.
func (r *playlistRepository) AddSongs(ctx context.Context, playlistID uint, songIDs []uint) (int, error) {
	added := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&models.PlaylistSong{}).
			Select("COALESCE(MAX(position), -1) + 1").
			Where("playlist_id = ?", playlistID).
			Scan(&next).Error; err != nil {
			return err
		}
		for _, songID := range songIDs {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.PlaylistSong{PlaylistID: playlistID, SongID: songID, Position: next})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				added++
				next++
			}
		}
		return tx.Model(&models.Playlist{ID: playlistID}).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		r.logger.LogError(ctx, err, "add_songs")
		return 0, models.NewInternalError(err)
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": playlistID, "songs_added": added})
	return added, nil
}

// RemoveSongs deletes the membership rows. Ids not in the playlist are ignored.
func (r *playlistRepository) RemoveSongs(ctx context.Context, playlistID uint, songIDs []uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("playlist_id = ? AND song_id IN ?", playlistID, songIDs).
		Delete(&models.PlaylistSong{})
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "remove_songs")
		return 0, models.NewInternalError(res.Error)
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": playlistID, "songs_removed": res.RowsAffected})
	return res.RowsAffected, nil
}

func (r *playlistRepository) AddCollaborator(ctx context.Context, playlistID, userID uint) error {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PlaylistCollaborator{PlaylistID: playlistID, UserID: userID})
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "add_collaborator")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("User is already a collaborator")
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": playlistID, "collaborator_added": userID})
	return nil
}

func (r *playlistRepository) RemoveCollaborator(ctx context.Context, playlistID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("playlist_id = ? AND user_id = ?", playlistID, userID).
		Delete(&models.PlaylistCollaborator{})
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "remove_collaborator")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Collaborator", userID)
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": playlistID, "collaborator_removed": userID})
	return nil
}

func (r *playlistRepository) Follow(ctx context.Context, userID, playlistID uint) error {
	return playlistFollows.add(ctx, r.db, playlistID, &models.UserFollowedPlaylist{UserID: userID, PlaylistID: playlistID})
}

func (r *playlistRepository) Unfollow(ctx context.Context, userID, playlistID uint) error {
	return playlistFollows.remove(ctx, r.db, playlistID, &models.UserFollowedPlaylist{},
		"user_id = ? AND playlist_id = ?", userID, playlistID)
}

func attachCreator(p *models.Playlist) {
	if p.Creator != nil {
		public := p.Creator.Public()
		p.CreatorProfile = &public
	}
}
