// Package filepayload decodes file uploads that arrive inline in a JSON body
// as data URIs. The media type is always sniffed from the decoded bytes; the
// type the client put in the data URI is discarded.
package filepayload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrInvalidInput is returned when the name or data is missing or the
	// payload is not valid base64.
	ErrInvalidInput = errors.New("invalid file payload")
	// ErrUnrecognizedFileType is returned when the bytes match no known
	// file signature.
	ErrUnrecognizedFileType = errors.New("unrecognized file type")
	// ErrTooLarge is returned when the decoded payload exceeds the limit.
	ErrTooLarge = errors.New("file too large")
)

// Request is the JSON shape clients send.
type Request struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// File is a decoded, sniffed upload.
type File struct {
	Name      string
	Data      []byte
	MediaType string // sniffed, without parameters
	Extension string // canonical, with leading dot
}

// Size returns the decoded length.
func (f File) Size() int64 { return int64(len(f.Data)) }

// Decode validates req, strips the data-URI prefix, decodes the payload and
// sniffs its type. maxBytes <= 0 disables the size check.
func Decode(req Request, maxBytes int64) (File, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Data) == "" {
		return File{}, fmt.Errorf("%w: name and data are required", ErrInvalidInput)
	}

	raw, err := base64.StdEncoding.DecodeString(stripDataURI(req.Data))
	if err != nil {
		return File{}, fmt.Errorf("%w: data is not valid base64", ErrInvalidInput)
	}
	if len(raw) == 0 {
		return File{}, fmt.Errorf("%w: data is empty", ErrInvalidInput)
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return File{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(raw), maxBytes)
	}

	mediaType, ext, ok := Sniff(raw)
	if !ok {
		return File{}, ErrUnrecognizedFileType
	}
	return File{Name: name, Data: raw, MediaType: mediaType, Extension: ext}, nil
}

// Sniff detects the media type of b from its signature bytes. Generic
// results (arbitrary binary or plain text) count as no match.
func Sniff(b []byte) (mediaType, ext string, ok bool) {
	m := mimetype.Detect(b)
	if m.Is("application/octet-stream") || m.Is("text/plain") {
		return "", "", false
	}
	mediaType = m.String()
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	return mediaType, m.Extension(), true
}

// stripDataURI removes a leading "data:<type>;base64," and surrounding space.
func stripDataURI(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ";base64,"); i >= 0 {
			return s[i+len(";base64,"):]
		}
		if i := strings.IndexByte(s, ','); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}

// BodyLimit is the JSON body size needed to carry maxBytes of decoded data
// as base64, plus room for the name and framing. maxBytes <= 0 means 10 MiB.
func BodyLimit(maxBytes int64) int64 {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return maxBytes/3*4 + 4096
}
