package library

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// decodable image types; webp and friends are sniffed but rejected since
// the processing pipeline cannot decode them.
var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// detectImageType sniffs the real content type from the file's magic
// bytes, ignoring the client-supplied extension.
func detectImageType(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("sniff file type: %w", err)
	}
	if kind == filetype.Unknown {
		return "", fmt.Errorf("unrecognized file format")
	}
	mime := kind.MIME.Value
	if !supportedImageTypes[mime] {
		return "", fmt.Errorf("unsupported file type %s", mime)
	}
	return mime, nil
}

// safeFilename strips any path components from a client-supplied name.
func safeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

// splitImageID separates a trailing image extension from a public image
// id, so both /public/image/{id} and /public/image/{id}.jpg resolve to
// the same item.
func splitImageID(raw string) string {
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp"} {
		if strings.HasSuffix(strings.ToLower(raw), ext) {
			return raw[:len(raw)-len(ext)]
		}
	}
	return raw
}

// objectKeyFor builds the blob key for a processed image. All processed
// output is JPEG regardless of the input format.
func objectKeyFor(id string) string { return "content/" + id + ".jpg" }

// thumbKeyFor builds the blob key for a thumbnail.
func thumbKeyFor(id string) string { return "thumbs/" + id + ".jpg" }
