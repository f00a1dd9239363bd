package repository

import (
	"context"
	"database/sql"
	"errors"

	"melodia/internal/models"
	"melodia/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.User, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, search string, page Page) ([]models.User, int64, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, id uint, admin bool) error
}

type userRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, logger: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "GetByID", "users")
	defer span.End()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A user with this email or username already exists")
		}
		r.logger.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]interface{}{"id": user.ID})
	return nil
}

func (r *userRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) (*models.User, error) {
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(changes)
		if res.Error != nil {
			if isUniqueConstraintError(res.Error) {
				return nil, models.NewConflictError("Username is already taken")
			}
			r.logger.LogError(ctx, res.Error, "update")
			return nil, models.NewInternalError(res.Error)
		}
		r.logger.LogUpdate(ctx, map[string]interface{}{"id": id, "fields": len(changes)})
	}
	return r.GetByID(ctx, id)
}

// userCounterReleases give back the likes and follows a deleted user held.
// They run before the delete so the cascaded join rows are still visible.
var userCounterReleases = []string{
	`UPDATE songs SET like_count = like_count - 1
		WHERE like_count > 0 AND id IN (SELECT song_id FROM user_liked_songs WHERE user_id = @user)`,
	`UPDATE artists SET follower_count = follower_count - 1
		WHERE follower_count > 0 AND id IN (SELECT artist_id FROM user_followed_artists WHERE user_id = @user)`,
	`UPDATE playlists SET follower_count = follower_count - 1
		WHERE follower_count > 0 AND creator_id <> @user
		AND id IN (SELECT playlist_id FROM user_followed_playlists WHERE user_id = @user)`,
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "Delete", "users")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range userCounterReleases {
			if err := tx.Exec(stmt, sql.Named("user", id)).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		observability.RecordErrorInContext(ctx, err)
		r.logger.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.logger.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

func (r *userRepository) List(ctx context.Context, search string, page Page) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		pattern := likePattern(search)
		q = q.Where("LOWER(email) LIKE ? OR LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var users []models.User
	if err := page.apply(q.Order("id ASC")).Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("is_admin = ?", true).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) SetAdmin(ctx context.Context, id uint, admin bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_admin", admin)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.logger.LogUpdate(ctx, map[string]interface{}{"id": id, "is_admin": admin})
	return nil
}
