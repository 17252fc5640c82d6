package storage

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	contentTypeOctetStream = "application/octet-stream"
	contentTypeText        = "text/plain"
	contentTypeXML         = "application/xml"

	// sniffLength is how many leading bytes content detection looks at.
	sniffLength = 512
)

// ContentType resolves the media type of an artifact. Checksum files are
// text and repository metadata is XML regardless of what the store says;
// otherwise a specific declared type wins, then content sniffing of head.
func ContentType(key, declared string, head []byte) string {
	name := path.Base(key)
	switch {
	case strings.HasSuffix(name, ".md5"), strings.HasSuffix(name, ".sha1"):
		return contentTypeText
	case name == "maven-metadata.xml":
		return contentTypeXML
	}

	if !isGeneric(declared) {
		return declared
	}
	if len(head) > 0 {
		return mimetype.Detect(head).String()
	}
	return contentTypeOctetStream
}

// needsSniffing reports whether ContentType would look at the content.
func needsSniffing(key, declared string) bool {
	return ContentType(key, declared, nil) == contentTypeOctetStream
}

func isGeneric(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	return mediaType == contentTypeOctetStream || mediaType == "binary/octet-stream"
}
