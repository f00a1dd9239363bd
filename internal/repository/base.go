// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"melodia/internal/models"
	"melodia/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error and anything else
// to an internal error.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// relation describes a join row whose existence is mirrored by a counter
// column on the target table.
type relation struct {
	name          string
	counterTable  string
	counterColumn string
	duplicateMsg  string
	missingMsg    string
}

var (
	artistFollows = relation{
		name:          "artist_follow",
		counterTable:  "artists",
		counterColumn: "follower_count",
		duplicateMsg:  "You already follow this artist",
		missingMsg:    "You do not follow this artist",
	}
	playlistFollows = relation{
		name:          "playlist_follow",
		counterTable:  "playlists",
		counterColumn: "follower_count",
		duplicateMsg:  "You already follow this playlist",
		missingMsg:    "You do not follow this playlist",
	}
	songLikes = relation{
		name:          "song_like",
		counterTable:  "songs",
		counterColumn: "like_count",
		duplicateMsg:  "You already like this song",
		missingMsg:    "You have not liked this song",
	}
)

// add inserts row and increments the target counter in one transaction. An
// existing row is a conflict and leaves the counter untouched.
func (rel relation) add(ctx context.Context, db *gorm.DB, targetID uint, row interface{}) error {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, rel.name+"_add", rel.counterTable)
	defer span.End()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError(rel.duplicateMsg)
		}
		return tx.Table(rel.counterTable).
			Where("id = ?", targetID).
			UpdateColumn(rel.counterColumn, gorm.Expr(rel.counterColumn+" + 1")).Error
	})
	return rel.finish(ctx, "add", err)
}

// remove deletes the rows matched by query and decrements the target counter
// in one transaction. A missing row is a conflict.
func (rel relation) remove(ctx context.Context, db *gorm.DB, targetID uint, model interface{}, query string, args ...interface{}) error {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, rel.name+"_remove", rel.counterTable)
	defer span.End()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(query, args...).Delete(model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError(rel.missingMsg)
		}
		return tx.Table(rel.counterTable).
			Where("id = ? AND "+rel.counterColumn+" > 0", targetID).
			UpdateColumn(rel.counterColumn, gorm.Expr(rel.counterColumn+" - 1")).Error
	})
	return rel.finish(ctx, "remove", err)
}

func (rel relation) finish(ctx context.Context, action string, err error) error {
	if err == nil {
		observability.RecordToggle(rel.name, action)
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	observability.RecordErrorInContext(ctx, err)
	observability.NewRepoLogger(rel.counterTable).LogError(ctx, err, rel.name+"_"+action)
	return models.NewInternalError(err)
}

func likePattern(search string) string {
	return "%" + strings.ToLower(search) + "%"
}
