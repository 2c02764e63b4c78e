package objectstore

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ProjectPrefix is where a project's supplemental resources live.
func ProjectPrefix(projectID string) string {
	return fmt.Sprintf("projects/%s/", projectID)
}

// StudentPrefix is where a student's assets for one project live.
func StudentPrefix(studentID, projectID string) string {
	return fmt.Sprintf("students/%s/%s/", sanitizeSegment(studentID), projectID)
}

// ProjectResourceKey returns a unique key for a project resource upload.
func ProjectResourceKey(projectID, name, ext string) string {
	return path.Join(ProjectPrefix(projectID), "resources", uniqueName(name, ext))
}

// EntryAssetKey returns a unique key for an entry asset upload.
func EntryAssetKey(studentID, projectID, name, ext string) string {
	return path.Join(StudentPrefix(studentID, projectID), uniqueName(name, ext))
}

// uniqueName is "<uuid8>-<sanitized base><ext>". The extension always comes
// from the sniffed type, never from the client-supplied name.
func uniqueName(name, ext string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return fmt.Sprintf("%s-%s%s", uuid.New().String()[:8], sanitizeFilename(base), ext)
}

// sanitizeFilename replaces characters that are awkward in object keys.
func sanitizeFilename(filename string) string {
	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	if len(result) == 0 || filename == "." {
		return "file"
	}
	if len(result) > 80 {
		result = result[:80]
	}
	return string(result)
}

// sanitizeSegment keeps principal-derived ids from introducing path
// separators into keys.
func sanitizeSegment(s string) string {
	return sanitizeFilename(s)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
