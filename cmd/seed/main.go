// Command main runs the database seeder for Melodia.
package main

import (
	"context"
	"flag"
	"log"

	"melodia/internal/bootstrap"
	"melodia/internal/config"
	"melodia/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	// Parse command line flags
	numUsers := flag.Int("users", defaults.Users, "Number of listeners to create")
	numArtists := flag.Int("artists", defaults.Artists, "Number of artists to create")
	albums := flag.Int("albums", defaults.AlbumsPerArtist, "Albums per artist")
	songs := flag.Int("songs", defaults.SongsPerAlbum, "Songs per album")
	singles := flag.Int("singles", defaults.SinglesPerArtist, "Singles per artist")
	playlists := flag.Int("playlists", defaults.PlaylistsPerUser, "Playlists per listener")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt hashing (dev only, users cannot log in)")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing to the database")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible runs")
	catalogFile := flag.String("file", "", "Import a YAML catalog instead of generating fake data")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true, SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *catalogFile != "" {
		catalog, err := seed.LoadCatalog(*catalogFile)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		if *shouldClean {
			if err := seed.ClearData(db.WithContext(ctx)); err != nil {
				log.Fatalf("❌ Cleanup failed: %v", err)
			}
		}
		if _, err := seed.ImportCatalog(ctx, db, catalog); err != nil {
			log.Fatalf("❌ Catalog import failed: %v", err)
		}
		log.Println("✨ Catalog imported.")
		return
	}

	opts := defaults
	opts.Users = *numUsers
	opts.Artists = *numArtists
	opts.AlbumsPerArtist = *albums
	opts.SongsPerAlbum = *songs
	opts.SinglesPerArtist = *singles
	opts.PlaylistsPerUser = *playlists
	opts.Clean = *shouldClean
	opts.SkipBcrypt = *fast
	opts.DryRun = *dryRun
	opts.RandomSeed = *randomSeed

	log.Printf("Target: %d users, %d artists, clean=%v\n", opts.Users, opts.Artists, opts.Clean)
	if _, err := seed.Seed(ctx, db, opts); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	if !opts.SkipBcrypt {
		log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
	}
}
