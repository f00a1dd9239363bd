package repository

import (
	"context"
	"testing"

	"melodia/internal/models"
	"melodia/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func reload[T any](t *testing.T, db *gorm.DB, id uint) T {
	t.Helper()
	var v T
	require.NoError(t, db.First(&v, id).Error)
	return v
}

func TestArtistRepository_FollowUnfollow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewArtistRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "fan@example.com", false)
	artist := testutil.CreateArtist(t, db, "Nina")

	require.NoError(t, repo.Follow(ctx, user.ID, artist.ID))
	assert.Equal(t, 1, reload[models.Artist](t, db, artist.ID).FollowerCount)

	err := repo.Follow(ctx, user.ID, artist.ID)
	assert.Equal(t, 400, models.StatusFor(err))
	assert.Equal(t, 1, reload[models.Artist](t, db, artist.ID).FollowerCount)

	followed, total, err := repo.ListFollowedBy(ctx, user.ID, Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, followed, 1)
	assert.Equal(t, "Nina", followed[0].Name)

	require.NoError(t, repo.Unfollow(ctx, user.ID, artist.ID))
	assert.Equal(t, 0, reload[models.Artist](t, db, artist.ID).FollowerCount)

	err = repo.Unfollow(ctx, user.ID, artist.ID)
	assert.Equal(t, 400, models.StatusFor(err))
	assert.Equal(t, 0, reload[models.Artist](t, db, artist.ID).FollowerCount)
}

func TestArtistRepository_ListAndCounts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewArtistRepository(db)
	ctx := context.Background()

	a := testutil.CreateArtist(t, db, "Alpha Band")
	testutil.CreateArtist(t, db, "Beta")
	require.NoError(t, db.Model(&models.Artist{}).Where("id = ?", a.ID).Update("verification_status", true).Error)
	album := testutil.CreateAlbum(t, db, "First", a.ID)
	testutil.CreateSong(t, db, "One", a.ID, &album.ID)
	testutil.CreateSong(t, db, "Two", a.ID, nil)

	artists, total, err := repo.List(ctx, ArtistFilter{Search: "alpha", Page: Page{Limit: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, artists, 1)

	verified := true
	artists, _, err = repo.List(ctx, ArtistFilter{Verified: &verified})
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, a.ID, artists[0].ID)

	withCounts, err := repo.GetWithCounts(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, withCounts.SongCount)
	assert.EqualValues(t, 1, withCounts.AlbumCount)

	_, err = repo.GetByID(ctx, 999)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestArtistRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewArtistRepository(db)
	ctx := context.Background()

	artist := testutil.CreateArtist(t, db, "Gone")
	album := testutil.CreateAlbum(t, db, "Last", artist.ID)
	testutil.CreateSong(t, db, "Track", artist.ID, &album.ID)
	other := testutil.CreateArtist(t, db, "Stays")
	testutil.CreateSong(t, db, "Kept", other.ID, nil)

	require.NoError(t, repo.Delete(ctx, artist.ID))

	var songs, albums int64
	db.Model(&models.Song{}).Where("artist_id = ?", artist.ID).Count(&songs)
	db.Model(&models.Album{}).Where("artist_id = ?", artist.ID).Count(&albums)
	assert.Zero(t, songs)
	assert.Zero(t, albums)

	db.Model(&models.Song{}).Count(&songs)
	assert.EqualValues(t, 1, songs)

	assert.Equal(t, 404, models.StatusFor(repo.Delete(ctx, artist.ID)))
}

func TestSongRepository_LikesAndPlays(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSongRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "listener@example.com", false)
	artist := testutil.CreateArtist(t, db, "Echo")
	song := testutil.CreateSong(t, db, "Loop", artist.ID, nil)

	require.NoError(t, repo.Like(ctx, user.ID, song.ID))
	assert.Equal(t, 400, models.StatusFor(repo.Like(ctx, user.ID, song.ID)))
	assert.Equal(t, 1, reload[models.Song](t, db, song.ID).LikeCount)

	liked, total, err := repo.ListLikedBy(ctx, user.ID, Page{Limit: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, liked, 1)
	require.NotNil(t, liked[0].Artist)
	assert.Equal(t, "Echo", liked[0].Artist.Name)

	require.NoError(t, repo.Unlike(ctx, user.ID, song.ID))
	assert.Equal(t, 0, reload[models.Song](t, db, song.ID).LikeCount)

	plays, err := repo.IncrementPlayCount(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, plays)
	plays, err = repo.IncrementPlayCount(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, plays)

	_, err = repo.IncrementPlayCount(ctx, 12345)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestSongRepository_TopAndMissing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSongRepository(db)
	ctx := context.Background()

	artist := testutil.CreateArtist(t, db, "Chart")
	low := testutil.CreateSong(t, db, "Low", artist.ID, nil)
	high := testutil.CreateSong(t, db, "High", artist.ID, nil)
	require.NoError(t, db.Model(&models.Song{}).Where("id = ?", high.ID).Update("play_count", 50).Error)
	require.NoError(t, db.Model(&models.Song{}).Where("id = ?", low.ID).Update("play_count", 5).Error)

	top, err := repo.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, high.ID, top[0].ID)

	missing, err := repo.MissingIDs(ctx, []uint{low.ID, 900, high.ID, 901})
	require.NoError(t, err)
	assert.Equal(t, []uint{900, 901}, missing)

	songs, total, err := repo.List(ctx, SongFilter{Search: "HIG", ArtistID: &artist.ID, Page: Page{Limit: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, songs, 1)
	assert.Equal(t, high.ID, songs[0].ID)
}

func TestAlbumRepository_AddSongs_RejectsForeignArtist(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAlbumRepository(db)
	ctx := context.Background()

	owner := testutil.CreateArtist(t, db, "Owner")
	stranger := testutil.CreateArtist(t, db, "Stranger")
	album := testutil.CreateAlbum(t, db, "Mixed", owner.ID)
	mine := testutil.CreateSong(t, db, "Mine", owner.ID, nil)
	theirs := testutil.CreateSong(t, db, "Theirs", stranger.ID, nil)

	err := repo.AddSongs(ctx, album.ID, []uint{mine.ID, theirs.ID})
	assert.Equal(t, 400, models.StatusFor(err))

	assert.Nil(t, reload[models.Song](t, db, mine.ID).AlbumID)
	assert.Nil(t, reload[models.Song](t, db, theirs.ID).AlbumID)

	err = repo.AddSongs(ctx, album.ID, []uint{mine.ID, 4242})
	assert.Equal(t, 404, models.StatusFor(err))
	assert.Nil(t, reload[models.Song](t, db, mine.ID).AlbumID)

	require.NoError(t, repo.AddSongs(ctx, album.ID, []uint{mine.ID}))
	got, err := repo.GetWithSongs(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, got.Songs, 1)
	assert.Equal(t, mine.ID, got.Songs[0].ID)
	require.NotNil(t, got.Artist)
	assert.Equal(t, "Owner", got.Artist.Name)
}

func TestAlbumRepository_RemoveSongAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAlbumRepository(db)
	ctx := context.Background()

	artist := testutil.CreateArtist(t, db, "Solo")
	album := testutil.CreateAlbum(t, db, "EP", artist.ID)
	song := testutil.CreateSong(t, db, "Single", artist.ID, &album.ID)
	loose := testutil.CreateSong(t, db, "Loose", artist.ID, nil)

	assert.Equal(t, 404, models.StatusFor(repo.RemoveSong(ctx, album.ID, loose.ID)))
	require.NoError(t, repo.RemoveSong(ctx, album.ID, song.ID))
	assert.Nil(t, reload[models.Song](t, db, song.ID).AlbumID)

	require.NoError(t, repo.AddSongs(ctx, album.ID, []uint{song.ID}))
	require.NoError(t, repo.Delete(ctx, album.ID))
	kept := reload[models.Song](t, db, song.ID)
	assert.Nil(t, kept.AlbumID)
}

func TestPlaylistRepository_SongsAreAppendedOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "curator@example.com", false)
	artist := testutil.CreateArtist(t, db, "Various")
	s1 := testutil.CreateSong(t, db, "A", artist.ID, nil)
	s2 := testutil.CreateSong(t, db, "B", artist.ID, nil)
	s3 := testutil.CreateSong(t, db, "C", artist.ID, nil)
	playlist := testutil.CreatePlaylist(t, db, "Mix", user.ID, true)

	added, err := repo.AddSongs(ctx, playlist.ID, []uint{s2.ID, s1.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = repo.AddSongs(ctx, playlist.ID, []uint{s1.ID, s3.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	ids, err := repo.SongIDs(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{s2.ID, s1.ID, s3.ID}, ids)

	removed, err := repo.RemoveSongs(ctx, playlist.ID, []uint{s1.ID, 999})
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	songs, err := repo.Songs(ctx, playlist.ID)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, s2.ID, songs[0].ID)
	assert.Equal(t, s3.ID, songs[1].ID)
}

func TestPlaylistRepository_CollaboratorsAndListing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner@example.com", false)
	friend := testutil.CreateUser(t, db, "friend@example.com", false)
	own := testutil.CreatePlaylist(t, db, "Own", owner.ID, false)
	testutil.CreatePlaylist(t, db, "Friend's", friend.ID, true)

	require.NoError(t, repo.AddCollaborator(ctx, own.ID, friend.ID))
	assert.Equal(t, 400, models.StatusFor(repo.AddCollaborator(ctx, own.ID, friend.ID)))

	ok, err := repo.IsCollaborator(ctx, own.ID, friend.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	collaborators, err := repo.Collaborators(ctx, own.ID)
	require.NoError(t, err)
	require.Len(t, collaborators, 1)
	assert.Equal(t, friend.ID, collaborators[0].ID)

	mine, total, err := repo.ListForUser(ctx, friend.ID, Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, mine, 2)

	public, total, err := repo.ListPublic(ctx, "", Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, public, 1)
	require.NotNil(t, public[0].CreatorProfile)
	assert.Equal(t, friend.ID, public[0].CreatorProfile.ID)

	require.NoError(t, repo.RemoveCollaborator(ctx, own.ID, friend.ID))
	assert.Equal(t, 404, models.StatusFor(repo.RemoveCollaborator(ctx, own.ID, friend.ID)))
}

func TestPlaylistRepository_FollowAndCreatorCascade(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPlaylistRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "maker@example.com", false)
	fan := testutil.CreateUser(t, db, "fan2@example.com", false)
	playlist := testutil.CreatePlaylist(t, db, "Hits", owner.ID, true)

	require.NoError(t, repo.Follow(ctx, fan.ID, playlist.ID))
	assert.Equal(t, 400, models.StatusFor(repo.Follow(ctx, fan.ID, playlist.ID)))
	assert.Equal(t, 1, reload[models.Playlist](t, db, playlist.ID).FollowerCount)

	followed, _, err := repo.ListFollowedBy(ctx, fan.ID, Page{})
	require.NoError(t, err)
	require.Len(t, followed, 1)

	require.NoError(t, repo.Unfollow(ctx, fan.ID, playlist.ID))
	assert.Equal(t, 0, reload[models.Playlist](t, db, playlist.ID).FollowerCount)

	require.NoError(t, users.Delete(ctx, owner.ID))
	_, err = repo.GetByID(ctx, playlist.ID)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestUserRepository_DeleteReleasesCounters(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	artists := NewArtistRepository(db)
	songs := NewSongRepository(db)
	playlists := NewPlaylistRepository(db)

	leaving := testutil.CreateUser(t, db, "leaving@example.com", false)
	staying := testutil.CreateUser(t, db, "staying@example.com", false)
	artist := testutil.CreateArtist(t, db, "Khruangbin")
	song := testutil.CreateSong(t, db, "Maria También", artist.ID, nil)
	playlist := testutil.CreatePlaylist(t, db, "Late Night", staying.ID, true)

	for _, u := range []*models.User{leaving, staying} {
		require.NoError(t, songs.Like(ctx, u.ID, song.ID))
		require.NoError(t, artists.Follow(ctx, u.ID, artist.ID))
	}
	require.NoError(t, playlists.Follow(ctx, leaving.ID, playlist.ID))

	require.NoError(t, users.Delete(ctx, leaving.ID))

	assert.Equal(t, 1, reload[models.Song](t, db, song.ID).LikeCount)
	assert.Equal(t, 1, reload[models.Artist](t, db, artist.ID).FollowerCount)
	assert.Equal(t, 0, reload[models.Playlist](t, db, playlist.ID).FollowerCount)

	require.NoError(t, users.Delete(ctx, staying.ID))
	assert.Equal(t, 0, reload[models.Song](t, db, song.ID).LikeCount)
	assert.Equal(t, 0, reload[models.Artist](t, db, artist.ID).FollowerCount)

	var rows int64
	require.NoError(t, db.Model(&models.UserLikedSong{}).Count(&rows).Error)
	assert.Zero(t, rows)
}
