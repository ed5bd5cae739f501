package attachment

import (
	"fmt"
	"path/filepath"
	"strings"
)

// allowedContentTypes lists content types accepted for processing.
var allowedContentTypes = map[string]bool{
	// documents
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-powerpoint":                                     true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/rtf": true,
	// images
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/webp":    true,
	"image/bmp":     true,
	"image/tiff":    true,
	"image/svg+xml": true,
	// text and data
	"text/plain":       true,
	"text/csv":         true,
	"text/html":        true,
	"text/calendar":    true,
	"application/json": true,
	"application/xml":  true,
	"text/xml":         true,
	// archives
	"application/zip":              true,
	"application/gzip":             true,
	"application/x-tar":            true,
	"application/x-zip-compressed": true,
	// audio / video
	"audio/mpeg":      true,
	"audio/wav":       true,
	"audio/ogg":       true,
	"video/mp4":       true,
	"video/mpeg":      true,
	"video/quicktime": true,
	"video/webm":      true,
	// unknown binary, accepted when nothing more specific is known
	"application/octet-stream": true,
}

// deniedContentTypes always fail, even where the allow-list would match.
var deniedContentTypes = map[string]bool{
	"application/x-msdownload":                      true,
	"application/x-executable":                      true,
	"application/x-dosexec":                         true,
	"application/vnd.microsoft.portable-executable": true,
	"application/x-msi":                             true,
	"application/x-ms-installer":                    true,
	"application/x-sh":                              true,
	"application/x-csh":                             true,
	"text/x-sh":                                     true,
	"text/x-shellscript":                            true,
	"application/x-bat":                             true,
	"application/x-msdos-program":                   true,
	"application/java-archive":                      true,
	"application/x-rar-compressed":                  true,
	"application/vnd.rar":                           true,
	"application/x-7z-compressed":                   true,
	"application/x-apple-diskimage":                 true,
	"application/x-iso9660-image":                   true,
	"application/x-sqlite3":                         true,
	"application/vnd.sqlite3":                       true,
	"application/x-msaccess":                        true,
}

// deniedExtensions fail regardless of the declared content type.
var deniedExtensions = map[string]bool{
	".exe": true, ".dll": true, ".com": true, ".scr": true, ".pif": true,
	".bat": true, ".cmd": true, ".msi": true, ".msp": true,
	".sh": true, ".bash": true, ".csh": true, ".ps1": true, ".psm1": true,
	".vbs": true, ".vbe": true, ".jse": true, ".wsf": true, ".wsh": true,
	".jar": true, ".app": true, ".dmg": true, ".iso": true, ".img": true,
	".rar": true, ".7z": true,
	".db": true, ".sqlite": true, ".sqlite3": true, ".mdb": true,
}

// checkPolicy validates filename extension and content type against the
// deny and allow lists. Extension denial wins over everything.
func checkPolicy(filename, contentType string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if deniedExtensions[ext] {
		return fmt.Errorf("attachment %q has a denied file extension %q", filename, ext)
	}

	normalized := normalizeContentType(contentType)
	if deniedContentTypes[normalized] {
		return fmt.Errorf("attachment %q has a denied content type %q", filename, normalized)
	}
	if !allowedContentTypes[normalized] {
		return fmt.Errorf("attachment %q has an unsupported content type %q", filename, normalized)
	}
	return nil
}

// normalizeContentType lowercases and strips parameters like "; charset=".
func normalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
