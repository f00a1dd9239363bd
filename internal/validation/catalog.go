package validation

import "time"

// ArtistInput is a validated artist create request.
type ArtistInput struct {
	Name               string
	Bio                *string
	DateOfBirth        *time.Time
	Image              *string
	VerificationStatus bool
}

// ValidateArtistCreate requires name; verificationStatus defaults to false.
func ValidateArtistCreate(p *Payload) (ArtistInput, error) {
	f := newFields(p)
	in := ArtistInput{
		Name:               f.requiredString("name", 200),
		Bio:                f.optionalString("bio", 5000),
		DateOfBirth:        f.optionalDate("dateOfBirth"),
		Image:              f.optionalString("image", 0),
		VerificationStatus: f.boolOr("verificationStatus", false),
	}
	return in, f.err
}

// ValidateArtistUpdate returns the supplied artist changes.
func ValidateArtistUpdate(p *Payload) (Changes, error) {
	f := newFields(p)
	c := Changes{}
	f.changeRequiredString(c, "name", "name", 200)
	f.changeNullableString(c, "bio", "bio", 5000)
	f.changeNullableDate(c, "dateOfBirth", "date_of_birth")
	f.changeNullableString(c, "image", "image", 0)
	f.changeBool(c, "verificationStatus", "verification_status")
	if f.err != nil {
		return nil, f.err
	}
	return c, nil
}

// SongInput is a validated song create request.
type SongInput struct {
	Title       string
	ArtistID    uint
	AlbumID     *uint
	Duration    int
	AudioURL    string
	CoverImage  *string
	Genre       *string
	ReleaseDate *time.Time
	Lyrics      *string
	IsExplicit  bool
}

// ValidateSongCreate requires title, artistId, duration and audioUrl;
// isExplicit defaults to false.
func ValidateSongCreate(p *Payload) (SongInput, error) {
	f := newFields(p)
	in := SongInput{
		Title:       f.requiredString("title", 200),
		ArtistID:    f.requiredID("artistId"),
		AlbumID:     f.optionalID("albumId"),
		Duration:    f.requiredPositiveInt("duration"),
		AudioURL:    f.requiredString("audioUrl", 0),
		CoverImage:  f.optionalString("coverImage", 0),
		Genre:       f.optionalString("genre", 60),
		ReleaseDate: f.optionalDate("releaseDate"),
		Lyrics:      f.optionalString("lyrics", 0),
		IsExplicit:  f.boolOr("isExplicit", false),
	}
	return in, f.err
}

// ValidateSongUpdate returns the supplied song changes.
func ValidateSongUpdate(p *Payload) (Changes, error) {
	f := newFields(p)
	c := Changes{}
	f.changeRequiredString(c, "title", "title", 200)
	f.changeRequiredID(c, "artistId", "artist_id")
	f.changeNullableID(c, "albumId", "album_id")
	f.changePositiveInt(c, "duration", "duration")
	f.changeRequiredString(c, "audioUrl", "audio_url", 0)
	f.changeNullableString(c, "coverImage", "cover_image", 0)
	f.changeNullableString(c, "genre", "genre", 60)
	f.changeNullableDate(c, "releaseDate", "release_date")
	f.changeNullableString(c, "lyrics", "lyrics", 0)
	f.changeBool(c, "isExplicit", "is_explicit")
	if f.err != nil {
		return nil, f.err
	}
	return c, nil
}

// AlbumInput is a validated album create request.
type AlbumInput struct {
	Title       string
	ArtistID    uint
	ReleaseDate *time.Time
	CoverImage  *string
	Genre       *string
	Description *string
}

// ValidateAlbumCreate requires title and artistId.
func ValidateAlbumCreate(p *Payload) (AlbumInput, error) {
	f := newFields(p)
	in := AlbumInput{
		Title:       f.requiredString("title", 200),
		ArtistID:    f.requiredID("artistId"),
		ReleaseDate: f.optionalDate("releaseDate"),
		CoverImage:  f.optionalString("coverImage", 0),
		Genre:       f.optionalString("genre", 60),
		Description: f.optionalString("description", 5000),
	}
	return in, f.err
}

// ValidateAlbumUpdate returns the supplied album changes.
func ValidateAlbumUpdate(p *Payload) (Changes, error) {
	f := newFields(p)
	c := Changes{}
	f.changeRequiredString(c, "title", "title", 200)
	f.changeRequiredID(c, "artistId", "artist_id")
	f.changeNullableDate(c, "releaseDate", "release_date")
	f.changeNullableString(c, "coverImage", "cover_image", 0)
	f.changeNullableString(c, "genre", "genre", 60)
	f.changeNullableString(c, "description", "description", 5000)
	if f.err != nil {
		return nil, f.err
	}
	return c, nil
}

// PlaylistInput is a validated playlist create request.
type PlaylistInput struct {
	Name        string
	Description *string
	CoverImage  *string
	IsPublic    bool
}

// ValidatePlaylistCreate requires name; isPublic defaults to true.
func ValidatePlaylistCreate(p *Payload) (PlaylistInput, error) {
	f := newFields(p)
	in := PlaylistInput{
		Name:        f.requiredString("name", 200),
		Description: f.optionalString("description", 5000),
		CoverImage:  f.optionalString("coverImage", 0),
		IsPublic:    f.boolOr("isPublic", true),
	}
	return in, f.err
}

// ValidatePlaylistUpdate returns the supplied playlist changes.
func ValidatePlaylistUpdate(p *Payload) (Changes, error) {
	f := newFields(p)
	c := Changes{}
	f.changeRequiredString(c, "name", "name", 200)
	f.changeNullableString(c, "description", "description", 5000)
	f.changeNullableString(c, "coverImage", "cover_image", 0)
	f.changeBool(c, "isPublic", "is_public")
	if f.err != nil {
		return nil, f.err
	}
	return c, nil
}
