package database

import (
	"context"
	"testing"

	"melodia/internal/config"
	"melodia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.Config{DBDriver: "postgres", DBHost: "db", DBPort: "5432"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(&config.Config{DBDriver: "sqlite", DBSQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = Dialector(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:catalog.db?_foreign_keys=1", SQLiteDSN("catalog.db"))
	assert.Equal(t, "file:melodia.db?_foreign_keys=1", SQLiteDSN(""))
}

func TestConnect_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:     "sqlite",
		DBSQLitePath: t.TempDir() + "/melodia.db",
	}

	db, err := Connect(cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"hybrid development", config.Config{Env: "development", DBDriver: "postgres"}, true, true, false},
		{"hybrid production", config.Config{Env: "production", DBDriver: "postgres", DBSchemaMode: "hybrid"}, true, false, false},
		{"sql only", config.Config{Env: "development", DBDriver: "postgres", DBSchemaMode: "sql"}, true, false, false},
		{"auto in production refused", config.Config{Env: "production", DBDriver: "postgres", DBSchemaMode: "auto"}, false, false, true},
		{"auto in production allowed", config.Config{Env: "production", DBDriver: "postgres", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"sqlite always auto", config.Config{Env: "production", DBDriver: "sqlite", DBSchemaMode: "sql"}, false, true, false},
		{"unknown mode", config.Config{DBDriver: "postgres", DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestApplySchema_SQLiteCascades(t *testing.T) {
	cfg := &config.Config{
		DBDriver:     "sqlite",
		DBSQLitePath: t.TempDir() + "/cascade.db",
	}
	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	artist := models.Artist{Name: "Nina"}
	require.NoError(t, db.Create(&artist).Error)
	album := models.Album{Title: "Blue", ArtistID: artist.ID}
	require.NoError(t, db.Create(&album).Error)
	song := models.Song{Title: "Feeling Good", ArtistID: artist.ID, AlbumID: &album.ID, Duration: 180, AudioURL: "https://cdn/a.mp3"}
	require.NoError(t, db.Create(&song).Error)

	require.NoError(t, db.Delete(&models.Album{}, album.ID).Error)
	var reloaded models.Song
	require.NoError(t, db.First(&reloaded, song.ID).Error)
	assert.Nil(t, reloaded.AlbumID)

	require.NoError(t, db.Delete(&models.Artist{}, artist.ID).Error)
	err = db.First(&models.Song{}, song.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
