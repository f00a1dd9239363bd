package validation

import (
	"testing"

	"melodia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func form(values map[string]string) *Payload {
	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = v
	}
	return NewPayload(fields)
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, 400, models.StatusFor(err))
}

func TestValidateSongCreate(t *testing.T) {
	t.Parallel()

	in, err := ValidateSongCreate(form(map[string]string{
		"title":    `  "Blue in Green"  `,
		"artistId": "3",
		"duration": "337",
		"audioUrl": "https://cdn.example.com/a.mp3",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Blue in Green", in.Title)
	assert.Equal(t, uint(3), in.ArtistID)
	assert.Equal(t, 337, in.Duration)
	assert.False(t, in.IsExplicit)
	assert.Nil(t, in.AlbumID)
	assert.Nil(t, in.Genre)

	in, err = ValidateSongCreate(form(map[string]string{
		"title":       "So What",
		"artistId":    "3",
		"albumId":     "9",
		"duration":    "545",
		"audioUrl":    "https://cdn.example.com/b.mp3",
		"genre":       "'jazz'",
		"releaseDate": "1959-08-17",
		"isExplicit":  "true",
	}))
	require.NoError(t, err)
	require.NotNil(t, in.AlbumID)
	assert.Equal(t, uint(9), *in.AlbumID)
	assert.Equal(t, "jazz", *in.Genre)
	assert.Equal(t, 1959, in.ReleaseDate.Year())
	assert.True(t, in.IsExplicit)

	bad := []map[string]string{
		{"artistId": "3", "duration": "10", "audioUrl": "u"},
		{"title": `""`, "artistId": "3", "duration": "10", "audioUrl": "u"},
		{"title": "t", "artistId": "abc", "duration": "10", "audioUrl": "u"},
		{"title": "t", "artistId": "3", "duration": "0", "audioUrl": "u"},
		{"title": "t", "artistId": "3", "duration": "-5", "audioUrl": "u"},
		{"title": "t", "artistId": "3", "duration": "10"},
		{"title": "t", "artistId": "3", "duration": "10", "audioUrl": "u", "releaseDate": "someday"},
		{"title": "t", "artistId": "3", "duration": "10", "audioUrl": "u", "isExplicit": "perhaps"},
	}
	for _, fields := range bad {
		_, err := ValidateSongCreate(form(fields))
		assertValidation(t, err)
	}
}

func TestValidateSongUpdate_PartialSemantics(t *testing.T) {
	t.Parallel()

	c, err := ValidateSongUpdate(form(map[string]string{"genre": ""}))
	require.NoError(t, err)
	assert.True(t, c.Has("genre"))
	assert.Nil(t, c["genre"])
	assert.False(t, c.Has("lyrics"))
	assert.False(t, c.Has("title"))

	c, err = ValidateSongUpdate(form(map[string]string{"albumId": "", "isExplicit": ""}))
	require.NoError(t, err)
	assert.True(t, c.Has("album_id"))
	assert.Nil(t, c["album_id"])
	assert.False(t, c.Has("is_explicit"))

	c, err = ValidateSongUpdate(form(map[string]string{"title": " New ", "duration": "12", "artistId": "4"}))
	require.NoError(t, err)
	assert.Equal(t, "New", c["title"])
	assert.Equal(t, 12, c["duration"])
	assert.Equal(t, uint(4), c["artist_id"])

	for _, fields := range []map[string]string{
		{"title": "  "},
		{"artistId": ""},
		{"audioUrl": ""},
		{"duration": "abc"},
	} {
		_, err := ValidateSongUpdate(form(fields))
		assertValidation(t, err)
	}

	c, err = ValidateSongUpdate(NewPayload(nil))
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

func TestValidateArtist(t *testing.T) {
	t.Parallel()

	in, err := ValidateArtistCreate(form(map[string]string{"name": "Nina Simone", "dateOfBirth": "1933-02-21"}))
	require.NoError(t, err)
	assert.Equal(t, "Nina Simone", in.Name)
	assert.False(t, in.VerificationStatus)
	require.NotNil(t, in.DateOfBirth)

	_, err = ValidateArtistCreate(form(map[string]string{"bio": "x"}))
	assertValidation(t, err)

	c, err := ValidateArtistUpdate(form(map[string]string{"bio": "", "verificationStatus": "1"}))
	require.NoError(t, err)
	assert.Nil(t, c["bio"])
	assert.Equal(t, true, c["verification_status"])
	assert.False(t, c.Has("name"))
}

func TestValidateAlbum(t *testing.T) {
	t.Parallel()

	in, err := ValidateAlbumCreate(form(map[string]string{"title": "Kind of Blue", "artistId": "1"}))
	require.NoError(t, err)
	assert.Equal(t, uint(1), in.ArtistID)

	_, err = ValidateAlbumCreate(form(map[string]string{"title": "Kind of Blue"}))
	assertValidation(t, err)

	c, err := ValidateAlbumUpdate(form(map[string]string{"description": "", "releaseDate": ""}))
	require.NoError(t, err)
	assert.Nil(t, c["description"])
	assert.Nil(t, c["release_date"])
}

func TestValidatePlaylist(t *testing.T) {
	t.Parallel()

	in, err := ValidatePlaylistCreate(form(map[string]string{"name": `"Road trip"`}))
	require.NoError(t, err)
	assert.Equal(t, "Road trip", in.Name)
	assert.True(t, in.IsPublic)

	in, err = ValidatePlaylistCreate(NewPayload(map[string]any{"name": "Late", "isPublic": false}))
	require.NoError(t, err)
	assert.False(t, in.IsPublic)

	_, err = ValidatePlaylistCreate(form(map[string]string{"name": "''"}))
	assertValidation(t, err)

	c, err := ValidatePlaylistUpdate(NewPayload(map[string]any{"description": nil}))
	require.NoError(t, err)
	assert.True(t, c.Has("description"))
	assert.Nil(t, c["description"])
}

func TestValidate_RejectsNonScalarValues(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"title":["x"],"artistId":1,"duration":10,"audioUrl":"https://x/y.mp3"}`,
		`{"title":"x","artistId":{"id":1},"duration":10,"audioUrl":"https://x/y.mp3"}`,
		`{"title":"x","artistId":1,"duration":[10],"audioUrl":"https://x/y.mp3"}`,
	} {
		p, err := FromJSON([]byte(body))
		require.NoError(t, err)
		_, err = ValidateSongCreate(p)
		assertValidation(t, err)
	}

	p, err := FromJSON([]byte(`{"name":{"first":"Late"}}`))
	require.NoError(t, err)
	_, err = ValidatePlaylistUpdate(p)
	assertValidation(t, err)
	assert.Contains(t, err.Error(), "name must be a single value")

	p, err = FromJSON([]byte(`{"email":"a@example.com","password":["hunter22"]}`))
	require.NoError(t, err)
	_, err = ValidateLogin(p)
	assertValidation(t, err)
}
