package media

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"melodia/internal/models"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Kind is the type of content a file field must hold.
type Kind int

const (
	KindImage Kind = iota
	KindAudio
)

const sniffLen = 512

var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
}

// ContentTypeOf sniffs the content type of a local file. Generic binary
// content falls back to the type registered for the file extension.
func ContentTypeOf(localPath string) (string, error) {
	head, err := readHead(localPath)
	if err != nil {
		return "", err
	}
	detected := http.DetectContentType(head)
	if detected == "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(localPath))
		if t, ok := audioExtensions[ext]; ok {
			return t, nil
		}
		if t := mime.TypeByExtension(ext); t != "" {
			return t, nil
		}
	}
	return detected, nil
}

// Check verifies that the file holds content of the given kind. filename is
// the client-supplied name and is only used for its extension.
func Check(localPath, filename string, kind Kind) error {
	switch kind {
	case KindImage:
		return checkImage(localPath)
	case KindAudio:
		return checkAudio(localPath, filename)
	default:
		return fmt.Errorf("unknown media kind %d", kind)
	}
}

func checkImage(localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return models.NewInternalError(err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return models.NewValidationError("Invalid image file")
	}
	switch format {
	case "jpeg", "png", "gif", "webp":
		return nil
	default:
		return models.NewValidationError("Unsupported image format")
	}
}

func checkAudio(localPath, filename string) error {
	head, err := readHead(localPath)
	if err != nil {
		return models.NewInternalError(err)
	}
	if len(head) == 0 {
		return models.NewValidationError("Audio file is empty")
	}

	detected := http.DetectContentType(head)
	switch {
	case strings.HasPrefix(detected, "audio/"), detected == "application/ogg":
		return nil
	case detected == "application/octet-stream":
		if _, ok := audioExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
			return nil
		}
	}
	return models.NewValidationError("Invalid audio file")
}

func readHead(localPath string) ([]byte, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}
