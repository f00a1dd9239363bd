// Package service implements the business rules that sit between HTTP handlers and repositories.
package service

import (
	"context"
	"errors"
	"time"

	"melodia/internal/cache"
	"melodia/internal/middleware"
	"melodia/internal/models"
	"melodia/internal/observability"
	"melodia/internal/repository"
	"melodia/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService provides account, authentication and library reads.
type UserService struct {
	users     repository.UserRepository
	songs     repository.SongRepository
	artists   repository.ArtistRepository
	playlists repository.PlaylistRepository
	store     *cache.Store
	secret    string
	tokenTTL  time.Duration
	hashCost  int
}

// UserServiceConfig carries the token settings for NewUserService.
type UserServiceConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewUserService(
	users repository.UserRepository,
	songs repository.SongRepository,
	artists repository.ArtistRepository,
	playlists repository.PlaylistRepository,
	store *cache.Store,
	cfg UserServiceConfig,
) *UserService {
	cost := cfg.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{
		users:     users,
		songs:     songs,
		artists:   artists,
		playlists: playlists,
		store:     store,
		secret:    cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
		hashCost:  cost,
	}
}

func (s *UserService) Register(ctx context.Context, in validation.RegisterInput) (*AuthResult, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "user", "Register")
	defer span.End()

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("A user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    in.Email,
		Username: in.Username,
		FullName: in.FullName,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	observability.LogServiceCall(ctx, "user", "register", map[string]interface{}{"user_id": user.ID})

	return s.authResult(user)
}

func (s *UserService) Login(ctx context.Context, in validation.LoginInput) (*AuthResult, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "user", "Login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	observability.LogServiceCall(ctx, "user", "login", map[string]interface{}{"user_id": user.ID})

	return s.authResult(user)
}

func (s *UserService) authResult(user *models.User) (*AuthResult, error) {
	token, err := middleware.IssueToken(s.secret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to its user. Every failure, including
// a deleted user, is reported as 401.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, *middleware.TokenClaims, error) {
	claims, err := middleware.ParseToken(s.secret, token)
	if err != nil {
		return nil, nil, models.NewUnauthorizedError(err.Error())
	}

	revoked, err := s.store.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		// Revocation is best-effort while Redis is unavailable.
		middleware.Logger.WarnContext(ctx, "token revocation check failed", "error", err.Error())
	} else if revoked {
		return nil, nil, models.NewUnauthorizedError("Token has been revoked")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return nil, nil, models.NewUnauthorizedError("User no longer exists")
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, claims *middleware.TokenClaims) error {
	if claims == nil {
		return nil
	}
	if err := s.store.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetProfile returns the public projection of another user.
func (s *UserService) GetProfile(ctx context.Context, id uint) (models.PublicUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}
	return user.Public(), nil
}

// Update applies changes to the user's own account. A "password" entry is
// hashed before it is stored.
func (s *UserService) Update(ctx context.Context, userID uint, changes validation.Changes) (*models.User, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "user", "Update")
	defer span.End()

	if raw, ok := changes["password"]; ok {
		password, _ := raw.(string)
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		changes["password"] = string(hash)
	}
	user, err := s.users.Update(ctx, userID, changes)
	if err != nil {
		return nil, err
	}
	observability.LogServiceCall(ctx, "user", "update", map[string]interface{}{"user_id": userID, "fields": len(changes)})
	return user, nil
}

// Delete removes the account; created playlists and every relation row go with it.
func (s *UserService) Delete(ctx context.Context, userID uint) error {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "user", "Delete")
	defer span.End()

	liked, _, err := s.songs.ListLikedBy(ctx, userID, repository.Page{})
	if err != nil {
		return err
	}
	followed, _, err := s.artists.ListFollowedBy(ctx, userID, repository.Page{})
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	// The delete released this user's likes and follows; drop the cached
	// entries that still carry the old counts.
	for i := range liked {
		s.store.InvalidateSongs(ctx, liked[i].ID)
		if liked[i].AlbumID != nil {
			s.store.InvalidateAlbum(ctx, *liked[i].AlbumID)
		}
	}
	for i := range followed {
		s.store.InvalidateArtist(ctx, followed[i].ID)
	}
	observability.LogServiceCall(ctx, "user", "delete", map[string]interface{}{"user_id": userID})
	return nil
}

func (s *UserService) List(ctx context.Context, q validation.ListQuery) ([]models.User, int64, error) {
	return s.users.List(ctx, q.Search, pageOf(q))
}

func (s *UserService) LikedSongs(ctx context.Context, userID uint, q validation.ListQuery) ([]models.Song, int64, error) {
	return s.songs.ListLikedBy(ctx, userID, pageOf(q))
}

func (s *UserService) FollowedArtists(ctx context.Context, userID uint, q validation.ListQuery) ([]models.Artist, int64, error) {
	return s.artists.ListFollowedBy(ctx, userID, pageOf(q))
}

func (s *UserService) FollowedPlaylists(ctx context.Context, userID uint, q validation.ListQuery) ([]models.Playlist, int64, error) {
	return s.playlists.ListFollowedBy(ctx, userID, pageOf(q))
}

func pageOf(q validation.ListQuery) repository.Page {
	limit := q.Limit
	if limit <= 0 {
		limit = validation.DefaultLimit
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return repository.Page{Limit: limit, Offset: (page - 1) * limit}
}
