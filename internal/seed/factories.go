// Package seed provides helpers to create demo data for the application
// database: fake catalogs built with gofakeit and YAML catalog imports.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"melodia/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "Melodia12!@"

var genres = []string{
	"Rock", "Pop", "Jazz", "Hip-Hop", "Electronic", "Classical", "Folk",
	"Soul", "Reggae", "Metal", "Blues", "Ambient", "Funk", "Country",
}

// Factory builds catalog entities and persists them to the database.
// It is a thin helper used by Seed and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed)), nextID: 1000}
}

// releaseDate spreads dates over the last MaxDays days.
func (f *Factory) releaseDate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 3650
	}
	daysBack := f.rng.Intn(maxDays)
	return time.Now().AddDate(0, 0, -daysBack).Truncate(24 * time.Hour)
}

func (f *Factory) genre() string {
	return genres[f.rng.Intn(len(genres))]
}

// BuildArtist constructs an artist without persisting it.
func (f *Factory) BuildArtist(overrides ...func(*models.Artist)) *models.Artist {
	bio := gofakeit.Paragraph(1, 3, 12, " ")
	image := fmt.Sprintf("https://picsum.photos/seed/artist-%s/600/600", gofakeit.UUID())
	born := gofakeit.DateRange(time.Now().AddDate(-80, 0, 0), time.Now().AddDate(-18, 0, 0))
	artist := &models.Artist{
		Name:               gofakeit.Name(),
		Bio:                &bio,
		Image:              &image,
		DateOfBirth:        &born,
		VerificationStatus: f.rng.Intn(3) == 0,
	}
	for _, override := range overrides {
		override(artist)
	}
	return artist
}

// BuildAlbum constructs an album for artist without persisting it.
func (f *Factory) BuildAlbum(artist *models.Artist, overrides ...func(*models.Album)) *models.Album {
	released := f.releaseDate()
	genre := f.genre()
	cover := fmt.Sprintf("https://picsum.photos/seed/album-%s/800/800", gofakeit.UUID())
	description := gofakeit.Sentence(12)
	album := &models.Album{
		Title:       gofakeit.BuzzWord() + " " + gofakeit.Noun(),
		ArtistID:    artist.ID,
		ReleaseDate: &released,
		Genre:       &genre,
		CoverImage:  &cover,
		Description: &description,
	}
	for _, override := range overrides {
		override(album)
	}
	return album
}

// BuildSong constructs a song for artist, on album when it is not nil.
func (f *Factory) BuildSong(artist *models.Artist, album *models.Album, overrides ...func(*models.Song)) *models.Song {
	song := &models.Song{
		Title:      gofakeit.HipsterWord() + " " + gofakeit.Verb(),
		ArtistID:   artist.ID,
		Duration:   gofakeit.Number(90, 480),
		AudioURL:   fmt.Sprintf("https://cdn.melodia.local/audio/%s.mp3", gofakeit.UUID()),
		IsExplicit: f.rng.Intn(5) == 0,
		PlayCount:  gofakeit.Number(0, 50000),
	}
	if album != nil {
		song.AlbumID = &album.ID
		song.Genre = album.Genre
		song.ReleaseDate = album.ReleaseDate
		song.CoverImage = album.CoverImage
	} else {
		genre := f.genre()
		released := f.releaseDate()
		song.Genre = &genre
		song.ReleaseDate = &released
	}
	for _, override := range overrides {
		override(song)
	}
	return song
}

// BuildUser constructs a listener account without persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
	if len(username) > 30 {
		username = username[:30]
	}
	fullName := gofakeit.Name()
	bio := gofakeit.Sentence(10)
	picture := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID())
	user := &models.User{
		Email:          fmt.Sprintf("%s@%s", gofakeit.UUID()[:8], gofakeit.DomainName()),
		Username:       &username,
		FullName:       &fullName,
		Bio:            &bio,
		ProfilePicture: &picture,
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = DefaultPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// BuildPlaylist constructs a playlist owned by creator.
func (f *Factory) BuildPlaylist(creator *models.User, overrides ...func(*models.Playlist)) *models.Playlist {
	description := gofakeit.Sentence(8)
	playlist := &models.Playlist{
		Name:        gofakeit.Adjective() + " " + gofakeit.Noun() + " mix",
		Description: &description,
		IsPublic:    f.rng.Intn(4) != 0,
		CreatorID:   creator.ID,
	}
	for _, override := range overrides {
		override(playlist)
	}
	return playlist
}

// create persists v, or assigns a synthetic id in DryRun mode.
func (f *Factory) create(v any, setID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		setID(f.nextID)
		log.Printf("[dry-run] create %T (no DB write)", v)
		return nil
	}
	return f.db.Create(v).Error
}

// CreateArtist builds and persists an artist.
func (f *Factory) CreateArtist(overrides ...func(*models.Artist)) (*models.Artist, error) {
	artist := f.BuildArtist(overrides...)
	return artist, f.create(artist, func(id uint) { artist.ID = id })
}

// CreateAlbum builds and persists an album for artist.
func (f *Factory) CreateAlbum(artist *models.Artist, overrides ...func(*models.Album)) (*models.Album, error) {
	album := f.BuildAlbum(artist, overrides...)
	return album, f.create(album, func(id uint) { album.ID = id })
}

// CreateSong builds and persists a song.
func (f *Factory) CreateSong(artist *models.Artist, album *models.Album, overrides ...func(*models.Song)) (*models.Song, error) {
	song := f.BuildSong(artist, album, overrides...)
	return song, f.create(song, func(id uint) { song.ID = id })
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	return user, f.create(user, func(id uint) { user.ID = id })
}

// CreatePlaylist builds and persists a playlist.
func (f *Factory) CreatePlaylist(creator *models.User, overrides ...func(*models.Playlist)) (*models.Playlist, error) {
	playlist := f.BuildPlaylist(creator, overrides...)
	return playlist, f.create(playlist, func(id uint) { playlist.ID = id })
}
