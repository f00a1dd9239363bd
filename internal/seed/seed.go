package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"melodia/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	Users            int
	Artists          int
	AlbumsPerArtist  int
	SongsPerAlbum    int
	SinglesPerArtist int
	PlaylistsPerUser int
	SongsPerPlaylist int
	LikesPerUser     int
	FollowsPerUser   int
	Clean            bool

	// SkipBcrypt stores the plain default password; dev fast mode only.
	SkipBcrypt bool
	// DryRun builds entities with synthetic ids and writes nothing.
	DryRun bool
	// RandomSeed makes a run reproducible when non-zero.
	RandomSeed int64
	// MaxDays bounds how far back release dates go.
	MaxDays int
}

// DefaultOptions returns a small but browsable catalog.
func DefaultOptions() Options {
	return Options{
		Users:            20,
		Artists:          12,
		AlbumsPerArtist:  2,
		SongsPerAlbum:    8,
		SinglesPerArtist: 2,
		PlaylistsPerUser: 2,
		SongsPerPlaylist: 12,
		LikesPerUser:     15,
		FollowsPerUser:   4,
	}
}

// Summary reports what a seeding run created.
type Summary struct {
	Users     int
	Artists   int
	Albums    int
	Songs     int
	Playlists int
	Likes     int
	Follows   int
}

// cleanOrder deletes children before parents so foreign keys hold.
var cleanOrder = []string{
	"playlist_songs",
	"playlist_collaborators",
	"user_followed_playlists",
	"user_followed_artists",
	"user_liked_songs",
	"playlists",
	"songs",
	"albums",
	"artists",
	"users",
}

// Seed populates the database with a fake catalog and listener activity.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	log.Printf("🌱 Starting database seeding with %d users and %d artists...", opts.Users, opts.Artists)
	start := time.Now()
	db = db.WithContext(ctx)

	// Clear existing data to avoid conflicts if requested
	if opts.Clean && !opts.DryRun {
		if err := ClearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	summary := &Summary{}

	songs, err := seedCatalog(f, opts, summary)
	if err != nil {
		return nil, err
	}
	log.Printf("✓ %d artists, %d albums and %d songs created", summary.Artists, summary.Albums, summary.Songs)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)
	log.Printf("✓ %d test users created", len(users))

	playlists, err := seedPlaylists(f, opts, users, songs)
	if err != nil {
		return nil, err
	}
	summary.Playlists = len(playlists)
	log.Printf("✓ %d playlists created", len(playlists))

	if opts.DryRun {
		log.Println("🎉 Dry run finished, nothing was written")
		return summary, nil
	}

	if err := seedActivity(db, f, opts, users, songs, playlists, summary); err != nil {
		return nil, err
	}
	log.Printf("✓ %d likes and %d follows recorded", summary.Likes, summary.Follows)

	if err := SyncCounters(db); err != nil {
		return nil, fmt.Errorf("failed to sync counters: %w", err)
	}

	log.Printf("🎉 Database seeding completed successfully in %s", time.Since(start).Round(time.Millisecond))
	return summary, nil
}

func seedCatalog(f *Factory, opts Options, summary *Summary) ([]*models.Song, error) {
	var songs []*models.Song
	for i := 0; i < opts.Artists; i++ {
		artist, err := f.CreateArtist()
		if err != nil {
			return nil, fmt.Errorf("failed to create artist: %w", err)
		}
		summary.Artists++

		for a := 0; a < opts.AlbumsPerArtist; a++ {
			album, err := f.CreateAlbum(artist)
			if err != nil {
				return nil, fmt.Errorf("failed to create album: %w", err)
			}
			summary.Albums++
			for s := 0; s < opts.SongsPerAlbum; s++ {
				song, err := f.CreateSong(artist, album)
				if err != nil {
					return nil, fmt.Errorf("failed to create song: %w", err)
				}
				songs = append(songs, song)
			}
		}

		for s := 0; s < opts.SinglesPerArtist; s++ {
			song, err := f.CreateSong(artist, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create single: %w", err)
			}
			songs = append(songs, song)
		}
	}
	summary.Songs = len(songs)
	return songs, nil
}

func seedPlaylists(f *Factory, opts Options, users []*models.User, songs []*models.Song) ([]*models.Playlist, error) {
	var playlists []*models.Playlist
	for _, user := range users {
		for p := 0; p < opts.PlaylistsPerUser; p++ {
			playlist, err := f.CreatePlaylist(user)
			if err != nil {
				return nil, fmt.Errorf("failed to create playlist: %w", err)
			}
			playlists = append(playlists, playlist)

			if f.opts.DryRun || len(songs) == 0 {
				continue
			}
			picked := f.pick(len(songs), opts.SongsPerPlaylist)
			rows := make([]models.PlaylistSong, 0, len(picked))
			for pos, idx := range picked {
				rows = append(rows, models.PlaylistSong{PlaylistID: playlist.ID, SongID: songs[idx].ID, Position: pos})
			}
			if len(rows) > 0 {
				if err := f.db.Create(&rows).Error; err != nil {
					return nil, fmt.Errorf("failed to fill playlist: %w", err)
				}
			}
		}
	}
	return playlists, nil
}

func seedActivity(db *gorm.DB, f *Factory, opts Options, users []*models.User, songs []*models.Song, playlists []*models.Playlist, summary *Summary) error {
	var artistIDs []uint
	if err := db.Model(&models.Artist{}).Pluck("id", &artistIDs).Error; err != nil {
		return err
	}

	for _, user := range users {
		likes := make([]models.UserLikedSong, 0, opts.LikesPerUser)
		for _, idx := range f.pick(len(songs), opts.LikesPerUser) {
			likes = append(likes, models.UserLikedSong{UserID: user.ID, SongID: songs[idx].ID})
		}
		if len(likes) > 0 {
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&likes).Error; err != nil {
				return fmt.Errorf("failed to create likes: %w", err)
			}
			summary.Likes += len(likes)
		}

		follows := make([]models.UserFollowedArtist, 0, opts.FollowsPerUser)
		for _, idx := range f.pick(len(artistIDs), opts.FollowsPerUser) {
			follows = append(follows, models.UserFollowedArtist{UserID: user.ID, ArtistID: artistIDs[idx]})
		}
		if len(follows) > 0 {
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follows).Error; err != nil {
				return fmt.Errorf("failed to create artist follows: %w", err)
			}
			summary.Follows += len(follows)
		}

		// Only public playlists of other users get followers.
		for _, idx := range f.pick(len(playlists), opts.FollowsPerUser) {
			playlist := playlists[idx]
			if !playlist.IsPublic || playlist.CreatorID == user.ID {
				continue
			}
			follow := models.UserFollowedPlaylist{UserID: user.ID, PlaylistID: playlist.ID}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error; err != nil {
				return fmt.Errorf("failed to create playlist follow: %w", err)
			}
			summary.Follows++
		}
	}
	return nil
}

// pick returns up to k distinct indexes in [0, n).
func (f *Factory) pick(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	return f.rng.Perm(n)[:k]
}

// ClearData removes every catalog row.
func ClearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range cleanOrder {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// SyncCounters recomputes the denormalized like and follower counts from
// the relation tables.
func SyncCounters(db *gorm.DB) error {
	statements := []string{
		`UPDATE songs SET like_count = (SELECT COUNT(*) FROM user_liked_songs WHERE user_liked_songs.song_id = songs.id)`,
		`UPDATE artists SET follower_count = (SELECT COUNT(*) FROM user_followed_artists WHERE user_followed_artists.artist_id = artists.id)`,
		`UPDATE playlists SET follower_count = (SELECT COUNT(*) FROM user_followed_playlists WHERE user_followed_playlists.playlist_id = playlists.id)`,
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range statements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
