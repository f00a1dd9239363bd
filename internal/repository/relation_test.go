package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"melodia/internal/models"
	"melodia/internal/observability"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestArtistFollow_SingleTransaction(t *testing.T) {
	insertFollow := `INSERT INTO "user_followed_artists" .* ON CONFLICT DO NOTHING`
	bumpCounter := regexp.QuoteMeta(`UPDATE "artists" SET "follower_count"=follower_count + 1`)

	tests := []struct {
		name         string
		mockBehavior func(mock sqlmock.Sqlmock)
		expectedCode int
	}{
		{
			name: "Inserted",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(insertFollow).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(bumpCounter).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "Already following",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(insertFollow).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			expectedCode: 400,
		},
		{
			name: "Counter update fails",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(insertFollow).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(bumpCounter).WithArgs(3).WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			expectedCode: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewArtistRepository(db)
			tt.mockBehavior(mock)

			err := repo.Follow(context.Background(), 9, 3)
			if tt.expectedCode == 0 {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.expectedCode, models.StatusFor(err))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSongUnlike_SingleTransaction(t *testing.T) {
	deleteLike := regexp.QuoteMeta(`DELETE FROM "user_liked_songs" WHERE user_id = $1 AND song_id = $2`)
	dropCounter := regexp.QuoteMeta(`UPDATE "songs" SET "like_count"=like_count - 1`)

	t.Run("Removed", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(deleteLike).WithArgs(9, 4).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(dropCounter).WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, NewSongRepository(db).Unlike(context.Background(), 9, 4))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not liked", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(deleteLike).WithArgs(9, 4).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := NewSongRepository(db).Unlike(context.Background(), 9, 4)
		assert.Equal(t, 400, models.StatusFor(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestArtistFollow_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := observability.Tracer
	observability.Tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("repository-test")
	t.Cleanup(func() { observability.Tracer = previous })

	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "user_followed_artists" .* ON CONFLICT DO NOTHING`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "artists"`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := NewArtistRepository(db).Follow(context.Background(), 9, 3)
	require.Error(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "repository.artist_follow_add", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}
