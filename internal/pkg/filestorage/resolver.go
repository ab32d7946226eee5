package filestorage

import (
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const genericContentType = "application/octet-stream"

// URLResolver builds link-share URLs for objects of a single bucket.
// URLs have the form https://<publicHost>/s/<shareID><pathPrefix><escaped key>.
type URLResolver struct {
	publicHost string
	shareID    string
	pathPrefix string
}

// NewURLResolver creates a URLResolver for a fixed store identity
func NewURLResolver(publicHost, shareID, pathPrefix string) *URLResolver {
	prefix := "/" + strings.Trim(pathPrefix, "/")
	if prefix != "/" {
		prefix += "/"
	}

	return &URLResolver{
		publicHost: strings.TrimRight(strings.TrimPrefix(strings.TrimPrefix(publicHost, "https://"), "http://"), "/"),
		shareID:    strings.Trim(shareID, "/"),
		pathPrefix: prefix,
	}
}

// Resolve returns the file URL for fileName and, for image content types, the same URL as thumbnail
func (r *URLResolver) Resolve(fileName, contentType string) (string, *string) {
	fileURL := r.FileURL(ObjectKey(fileName))
	if !IsImage(contentType) {
		return fileURL, nil
	}
	thumbnailURL := fileURL
	return fileURL, &thumbnailURL
}

// FileURL returns the public URL of an object key
func (r *URLResolver) FileURL(key string) string {
	return "https://" + r.publicHost + "/s/" + r.shareID + r.pathPrefix + url.PathEscape(key)
}

// ObjectKey derives the object key from an uploaded file name.
// Directory components are dropped; an empty string means the name is unusable.
func ObjectKey(fileName string) string {
	name := strings.TrimSpace(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "" {
		return ""
	}

	base := path.Base(name)
	switch base {
	case ".", "..", "/":
		return ""
	}
	return base
}

// IsImage reports whether contentType is an image media type
func IsImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.HasPrefix(mediaType, "image/")
}

// DetectContentType keeps a declared content type and sniffs the bytes when none was declared
func DetectContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.EqualFold(declared, genericContentType) {
		return declared
	}
	return mimetype.Detect(data).String()
}
