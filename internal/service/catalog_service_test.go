package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"melodia/internal/models"
	"melodia/internal/testutil"
	"melodia/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(fields map[string]any) *validation.Payload {
	return validation.NewPayload(fields)
}

func TestSongService_CreateReturnsValidatedInput(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	artist := testutil.CreateArtist(t, env.db, "Composer")
	album := testutil.CreateAlbum(t, env.db, "Works", artist.ID)

	in, err := validation.ValidateSongCreate(payload(map[string]any{
		"title":       "  'Nocturne'  ",
		"artistId":    artist.ID,
		"albumId":     album.ID,
		"duration":    "245",
		"audioUrl":    "https://cdn.example.com/nocturne.mp3",
		"genre":       "Classical",
		"releaseDate": "2021-03-04",
	}))
	require.NoError(t, err)

	song, err := env.songs.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Nocturne", song.Title)
	assert.Equal(t, artist.ID, song.ArtistID)
	require.NotNil(t, song.AlbumID)
	assert.Equal(t, album.ID, *song.AlbumID)
	assert.Equal(t, 245, song.Duration)
	assert.Equal(t, "https://cdn.example.com/nocturne.mp3", song.AudioURL)
	require.NotNil(t, song.Genre)
	assert.Equal(t, "Classical", *song.Genre)
	require.NotNil(t, song.ReleaseDate)
	assert.Equal(t, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), song.ReleaseDate.UTC())
	assert.False(t, song.IsExplicit)
	assert.Nil(t, song.Lyrics)
	assert.Zero(t, song.PlayCount)
	require.NotNil(t, song.Artist)
	assert.Equal(t, "Composer", song.Artist.Name)
}

func TestSongService_CreateRejectsForeignAlbum(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := testutil.CreateArtist(t, env.db, "A")
	b := testutil.CreateArtist(t, env.db, "B")
	album := testutil.CreateAlbum(t, env.db, "B-sides", b.ID)

	_, err := env.songs.Create(ctx, validation.SongInput{
		Title: "Wrong", ArtistID: a.ID, AlbumID: &album.ID, Duration: 10, AudioURL: "https://x/y.mp3",
	})
	assertStatus(t, 400, err)

	_, err = env.songs.Create(ctx, validation.SongInput{
		Title: "Orphan", ArtistID: 999, Duration: 10, AudioURL: "https://x/y.mp3",
	})
	assertStatus(t, 404, err)

	var count int64
	env.db.Model(&models.Song{}).Count(&count)
	assert.Zero(t, count)
}

func TestSongService_UpdateChecksArtistAlbumPair(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	a := testutil.CreateArtist(t, env.db, "A")
	b := testutil.CreateArtist(t, env.db, "B")
	albumA := testutil.CreateAlbum(t, env.db, "A1", a.ID)
	song := testutil.CreateSong(t, env.db, "Track", a.ID, &albumA.ID)

	// Moving to B while still on A's album is refused.
	_, err := env.songs.Update(ctx, song.ID, validation.Changes{"artist_id": b.ID})
	assertStatus(t, 400, err)

	updated, err := env.songs.Update(ctx, song.ID, validation.Changes{"artist_id": b.ID, "album_id": nil})
	require.NoError(t, err)
	assert.Equal(t, b.ID, updated.ArtistID)
	assert.Nil(t, updated.AlbumID)
}

func TestSongService_TopLimitIsCapped(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	artist := testutil.CreateArtist(t, env.db, "Prolific")

	songs := make([]models.Song, 0, 120)
	for i := 0; i < 120; i++ {
		songs = append(songs, models.Song{
			Title: "Song", ArtistID: artist.ID, Duration: 100, AudioURL: "https://cdn/a.mp3", PlayCount: i,
		})
	}
	require.NoError(t, env.db.CreateInBatches(songs, 50).Error)

	top, err := env.songs.Top(ctx, validation.ParseLimit("500"))
	require.NoError(t, err)
	assert.Len(t, top, 100)
	assert.Equal(t, 119, top[0].PlayCount)

	for _, raw := range []string{"0", "abc", "", "-4"} {
		top, err = env.songs.Top(ctx, validation.ParseLimit(raw))
		require.NoError(t, err)
		assert.Len(t, top, 10, "limit %q", raw)
	}
}

func TestSongService_LikeAndPlay(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "u@example.com", false)
	artist := testutil.CreateArtist(t, env.db, "Loud")
	song := testutil.CreateSong(t, env.db, "Bang", artist.ID, nil)

	require.NoError(t, env.songs.Like(ctx, user.ID, song.ID))
	assertStatus(t, 400, env.songs.Like(ctx, user.ID, song.ID))
	require.NoError(t, env.songs.Unlike(ctx, user.ID, song.ID))
	assertStatus(t, 400, env.songs.Unlike(ctx, user.ID, song.ID))
	assertStatus(t, 404, env.songs.Like(ctx, user.ID, 777))

	got, err := env.songs.Get(ctx, song.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LikeCount)

	plays, err := env.songs.Play(ctx, user.ID, song.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, plays)
}

func TestArtistService_FollowRestoresCounter(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "f@example.com", false)
	artist := testutil.CreateArtist(t, env.db, "Star")

	before, err := env.artists.Get(ctx, artist.ID)
	require.NoError(t, err)

	require.NoError(t, env.artists.Follow(ctx, user.ID, artist.ID))
	assertStatus(t, 400, env.artists.Follow(ctx, user.ID, artist.ID))

	during, err := env.artists.Get(ctx, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, before.FollowerCount+1, during.FollowerCount)

	require.NoError(t, env.artists.Unfollow(ctx, user.ID, artist.ID))
	after, err := env.artists.Get(ctx, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, before.FollowerCount, after.FollowerCount)

	assertStatus(t, 404, env.artists.Follow(ctx, user.ID, 4040))
}

func TestArtistService_UpdateOmittedVersusEmpty(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.artists.Create(ctx, validation.ArtistInput{
		Name: "Bio Haver",
		Bio:  testutil.Ptr("Long story"),
	})
	require.NoError(t, err)

	changes, err := validation.ValidateArtistUpdate(payload(map[string]any{"name": "Renamed"}))
	require.NoError(t, err)
	updated, err := env.artists.Update(ctx, created.ID, changes)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "Long story", *updated.Bio)

	changes, err = validation.ValidateArtistUpdate(payload(map[string]any{"bio": ""}))
	require.NoError(t, err)
	updated, err = env.artists.Update(ctx, created.ID, changes)
	require.NoError(t, err)
	assert.Nil(t, updated.Bio)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = env.artists.Update(ctx, 31337, changes)
	assertStatus(t, 404, err)
}

func TestArtistService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	artist := testutil.CreateArtist(t, env.db, "Doomed")
	album := testutil.CreateAlbum(t, env.db, "Finale", artist.ID)
	song := testutil.CreateSong(t, env.db, "Coda", artist.ID, &album.ID)

	require.NoError(t, env.artists.Delete(ctx, artist.ID))

	_, err := env.songs.Get(ctx, song.ID)
	assertStatus(t, 404, err)
	_, err = env.albums.Get(ctx, album.ID)
	assertStatus(t, 404, err)
	assertStatus(t, 404, env.artists.Delete(ctx, artist.ID))
}

func TestAlbumService_AddSongsRejectsMismatchedArtist(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := testutil.CreateArtist(t, env.db, "Owner")
	other := testutil.CreateArtist(t, env.db, "Other")
	album := testutil.CreateAlbum(t, env.db, "LP", owner.ID)
	own := testutil.CreateSong(t, env.db, "Own", owner.ID, nil)
	foreign := testutil.CreateSong(t, env.db, "Foreign", other.ID, nil)

	_, err := env.albums.AddSongs(ctx, album.ID, []uint{own.ID, foreign.ID})
	assertStatus(t, 400, err)

	for _, id := range []uint{own.ID, foreign.ID} {
		var s models.Song
		require.NoError(t, env.db.First(&s, id).Error)
		assert.Nil(t, s.AlbumID, "song %d must be untouched", id)
	}

	got, err := env.albums.AddSongs(ctx, album.ID, []uint{own.ID})
	require.NoError(t, err)
	require.Len(t, got.Songs, 1)

	got, err = env.albums.RemoveSong(ctx, album.ID, own.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Songs)
	_, err = env.songs.Get(ctx, own.ID)
	assert.NoError(t, err, "removing from an album keeps the song")
}

func TestAlbumService_UpdateArtistWithSongs(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	owner := testutil.CreateArtist(t, env.db, "Owner")
	other := testutil.CreateArtist(t, env.db, "Other")
	album := testutil.CreateAlbum(t, env.db, "LP", owner.ID)
	testutil.CreateSong(t, env.db, "Track", owner.ID, &album.ID)

	_, err := env.albums.Update(ctx, album.ID, validation.Changes{"artist_id": other.ID})
	assertStatus(t, 400, err)

	updated, err := env.albums.Update(ctx, album.ID, validation.Changes{"genre": "Jazz"})
	require.NoError(t, err)
	require.NotNil(t, updated.Genre)
	assert.Equal(t, "Jazz", *updated.Genre)
	assert.Equal(t, owner.ID, updated.ArtistID)
}

func TestArtistService_CachedReadsSeeWrites(t *testing.T) {
	mr, store := redisStore(t)
	env := newTestEnv(t, store)
	ctx := context.Background()
	user := testutil.CreateUser(t, env.db, "c@example.com", false)
	artist := testutil.CreateArtist(t, env.db, "Cached")

	first, err := env.artists.Get(ctx, artist.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("artist:"+itoa(artist.ID)))

	require.NoError(t, env.artists.Follow(ctx, user.ID, artist.ID))
	assert.False(t, mr.Exists("artist:"+itoa(artist.ID)))

	second, err := env.artists.Get(ctx, artist.ID)
	require.NoError(t, err)
	assert.Equal(t, first.FollowerCount+1, second.FollowerCount)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestSongService_CountersRefreshCachedAlbum(t *testing.T) {
	_, store := redisStore(t)
	env := newTestEnv(t, store)
	ctx := context.Background()
	fan := testutil.CreateUser(t, env.db, "fan@example.com", false)
	artist := testutil.CreateArtist(t, env.db, "Composer")
	album := testutil.CreateAlbum(t, env.db, "Works", artist.ID)
	song := testutil.CreateSong(t, env.db, "Nocturne", artist.ID, &album.ID)

	cached, err := env.albums.Get(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, cached.Songs, 1)
	assert.Zero(t, cached.Songs[0].LikeCount)

	require.NoError(t, env.songs.Like(ctx, fan.ID, song.ID))
	cached, err = env.albums.Get(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Songs[0].LikeCount)

	_, err = env.songs.Play(ctx, fan.ID, song.ID)
	require.NoError(t, err)
	cached, err = env.albums.Get(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Songs[0].PlayCount)

	require.NoError(t, env.songs.Unlike(ctx, fan.ID, song.ID))
	cached, err = env.albums.Get(ctx, album.ID)
	require.NoError(t, err)
	assert.Zero(t, cached.Songs[0].LikeCount)
}
