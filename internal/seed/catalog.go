package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"melodia/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Catalog is a hand-written list of artists to import, usually from a
// catalog.yml checked into a demo environment.
type Catalog struct {
	Artists []CatalogArtist `yaml:"artists"`
}

// CatalogArtist describes one artist with its albums and singles.
type CatalogArtist struct {
	Name     string         `yaml:"name"`
	Bio      string         `yaml:"bio"`
	Image    string         `yaml:"image"`
	Verified bool           `yaml:"verified"`
	Albums   []CatalogAlbum `yaml:"albums"`
	Singles  []CatalogSong  `yaml:"singles"`
}

// CatalogAlbum describes an album and its tracks.
type CatalogAlbum struct {
	Title       string        `yaml:"title"`
	Genre       string        `yaml:"genre"`
	ReleaseDate string        `yaml:"releaseDate"`
	CoverImage  string        `yaml:"coverImage"`
	Songs       []CatalogSong `yaml:"songs"`
}

// CatalogSong describes a single track. Duration is in seconds.
type CatalogSong struct {
	Title    string `yaml:"title"`
	Duration int    `yaml:"duration"`
	AudioURL string `yaml:"audioUrl"`
	Genre    string `yaml:"genre"`
	Explicit bool   `yaml:"explicit"`
	Lyrics   string `yaml:"lyrics"`
}

const releaseDateLayout = "2006-01-02"

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// LoadCatalog reads and parses the catalog file at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func (c *Catalog) validate() error {
	if len(c.Artists) == 0 {
		return errors.New("catalog has no artists")
	}
	for i, artist := range c.Artists {
		if strings.TrimSpace(artist.Name) == "" {
			return fmt.Errorf("artist #%d: name is required", i+1)
		}
		for _, album := range artist.Albums {
			if strings.TrimSpace(album.Title) == "" {
				return fmt.Errorf("artist %q: album title is required", artist.Name)
			}
			if album.ReleaseDate != "" {
				if _, err := time.Parse(releaseDateLayout, album.ReleaseDate); err != nil {
					return fmt.Errorf("album %q: releaseDate must be YYYY-MM-DD", album.Title)
				}
			}
			for _, song := range album.Songs {
				if err := song.validate(); err != nil {
					return fmt.Errorf("album %q: %w", album.Title, err)
				}
			}
		}
		for _, song := range artist.Singles {
			if err := song.validate(); err != nil {
				return fmt.Errorf("artist %q: %w", artist.Name, err)
			}
		}
	}
	return nil
}

func (s CatalogSong) validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("song title is required")
	}
	if s.Duration <= 0 {
		return fmt.Errorf("song %q: duration must be positive", s.Title)
	}
	if strings.TrimSpace(s.AudioURL) == "" {
		return fmt.Errorf("song %q: audioUrl is required", s.Title)
	}
	return nil
}

// ImportCatalog writes the catalog, matching existing artists by name,
// albums by (artist, title) and songs by (artist, title). Re-importing
// the same file creates nothing new.
func ImportCatalog(ctx context.Context, db *gorm.DB, catalog *Catalog) (*Summary, error) {
	summary := &Summary{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range catalog.Artists {
			artist, created, err := findOrCreateArtist(tx, entry)
			if err != nil {
				return err
			}
			if created {
				summary.Artists++
			}

			for _, albumEntry := range entry.Albums {
				album, created, err := findOrCreateAlbum(tx, artist, albumEntry)
				if err != nil {
					return err
				}
				if created {
					summary.Albums++
				}
				for _, songEntry := range albumEntry.Songs {
					created, err := findOrCreateSong(tx, artist, album, songEntry)
					if err != nil {
						return err
					}
					if created {
						summary.Songs++
					}
				}
			}

			for _, songEntry := range entry.Singles {
				created, err := findOrCreateSong(tx, artist, nil, songEntry)
				if err != nil {
					return err
				}
				if created {
					summary.Songs++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✓ catalog imported: %d artists, %d albums, %d songs", summary.Artists, summary.Albums, summary.Songs)
	return summary, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func findOrCreateArtist(tx *gorm.DB, entry CatalogArtist) (*models.Artist, bool, error) {
	var artist models.Artist
	err := tx.Where("name = ?", strings.TrimSpace(entry.Name)).First(&artist).Error
	if err == nil {
		return &artist, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	artist = models.Artist{
		Name:               strings.TrimSpace(entry.Name),
		Bio:                optional(entry.Bio),
		Image:              optional(entry.Image),
		VerificationStatus: entry.Verified,
	}
	if err := tx.Create(&artist).Error; err != nil {
		return nil, false, fmt.Errorf("create artist %q: %w", entry.Name, err)
	}
	return &artist, true, nil
}

func findOrCreateAlbum(tx *gorm.DB, artist *models.Artist, entry CatalogAlbum) (*models.Album, bool, error) {
	var album models.Album
	err := tx.Where("artist_id = ? AND title = ?", artist.ID, strings.TrimSpace(entry.Title)).First(&album).Error
	if err == nil {
		return &album, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	album = models.Album{
		Title:      strings.TrimSpace(entry.Title),
		ArtistID:   artist.ID,
		Genre:      optional(entry.Genre),
		CoverImage: optional(entry.CoverImage),
	}
	if entry.ReleaseDate != "" {
		released, _ := time.Parse(releaseDateLayout, entry.ReleaseDate)
		album.ReleaseDate = &released
	}
	if err := tx.Create(&album).Error; err != nil {
		return nil, false, fmt.Errorf("create album %q: %w", entry.Title, err)
	}
	return &album, true, nil
}

func findOrCreateSong(tx *gorm.DB, artist *models.Artist, album *models.Album, entry CatalogSong) (bool, error) {
	var count int64
	err := tx.Model(&models.Song{}).
		Where("artist_id = ? AND title = ?", artist.ID, strings.TrimSpace(entry.Title)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	song := models.Song{
		Title:      strings.TrimSpace(entry.Title),
		ArtistID:   artist.ID,
		Duration:   entry.Duration,
		AudioURL:   strings.TrimSpace(entry.AudioURL),
		Genre:      optional(entry.Genre),
		Lyrics:     optional(entry.Lyrics),
		IsExplicit: entry.Explicit,
	}
	if album != nil {
		song.AlbumID = &album.ID
		song.CoverImage = album.CoverImage
		song.ReleaseDate = album.ReleaseDate
		if song.Genre == nil {
			song.Genre = album.Genre
		}
	} else {
		now := time.Now()
		song.ReleaseDate = &now
	}
	if err := tx.Create(&song).Error; err != nil {
		return false, fmt.Errorf("create song %q: %w", entry.Title, err)
	}
	return true, nil
}
