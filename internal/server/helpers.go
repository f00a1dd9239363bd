package server

import (
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"melodia/internal/media"
	"melodia/internal/models"
	"melodia/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// fileField maps a multipart file field to the payload key that receives the
// uploaded file's URL.
type fileField struct {
	form   string
	key    string
	folder string
	kind   media.Kind
}

var (
	userImage     = fileField{form: "image", key: "profilePicture", folder: media.FolderUsers, kind: media.KindImage}
	artistImage   = fileField{form: "image", key: "image", folder: media.FolderArtists, kind: media.KindImage}
	albumCover    = fileField{form: "coverImage", key: "coverImage", folder: media.FolderAlbums, kind: media.KindImage}
	playlistCover = fileField{form: "coverImage", key: "coverImage", folder: media.FolderPlaylists, kind: media.KindImage}
	songCover     = fileField{form: "coverImage", key: "coverImage", folder: media.FolderSongCovers, kind: media.KindImage}
	songAudio     = fileField{form: "audioUrl", key: "audioUrl", folder: media.FolderSongAudio, kind: media.KindAudio}
)

// parseID extracts a route parameter by name as a positive uint.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "songId" -> "Invalid song ID").
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := validation.ParseID(c.Params(param))
	if err != nil {
		return 0, models.NewValidationError("Invalid " + humanizeParam(param))
	}
	return id, nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

func listQuery(c *fiber.Ctx) validation.ListQuery {
	return validation.ParseListQuery(func(key string) string { return c.Query(key) })
}

func limitQuery(c *fiber.Ctx) int {
	return validation.ParseLimit(c.Query("limit"))
}

// listResponse is the envelope of paginated lists.
func listResponse(key string, items any, q validation.ListQuery, total int64) fiber.Map {
	return fiber.Map{
		key: items,
		"pagination": fiber.Map{
			"page":  q.Page,
			"limit": q.Limit,
			"total": total,
		},
	}
}

func message(text string) fiber.Map {
	return fiber.Map{"message": text}
}

// readPayload decodes the request body into a Payload. Multipart bodies have
// their file fields uploaded first; a stored file replaces any same-named
// text value.
func (s *Server) readPayload(c *fiber.Ctx, files ...fileField) (*validation.Payload, error) {
	contentType := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, models.NewValidationError("Invalid multipart form")
		}
		payload := validation.FromForm(form.Value)
		for _, f := range files {
			headers := form.File[f.form]
			if len(headers) == 0 {
				continue
			}
			fileURL, err := s.storeUpload(c, headers[0], f)
			if err != nil {
				return nil, err
			}
			payload.Set(f.key, fileURL)
		}
		return payload, nil

	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		values, err := url.ParseQuery(string(c.Body()))
		if err != nil {
			return nil, models.NewValidationError("Invalid form body")
		}
		return validation.FromForm(values), nil

	default:
		payload, err := validation.FromJSON(c.Body())
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		return payload, nil
	}
}

// storeUpload saves one multipart file to a temp file, checks its content and
// hands it to the uploader, which removes the temp file.
func (s *Server) storeUpload(c *fiber.Ctx, header *multipart.FileHeader, f fileField) (string, error) {
	tmp, err := os.CreateTemp(s.config.UploadTmpDir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := c.SaveFile(header, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", models.NewInternalError(err)
	}
	if err := media.Check(tmpPath, header.Filename, f.kind); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	return s.uploader.Upload(c.UserContext(), tmpPath, f.folder)
}
