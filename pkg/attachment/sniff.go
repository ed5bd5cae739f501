package attachment

import "bytes"

// magicNumber maps a leading byte signature to a content type. The table is
// checked in order; first prefix match wins.
type magicNumber struct {
	prefix      []byte
	contentType string
}

var magicNumbers = []magicNumber{
	{[]byte("%PDF"), "application/pdf"},
	{[]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
	{[]byte{0xFF, 0xD8, 0xFF}, "image/jpeg"},
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte{0x50, 0x4B, 0x03, 0x04}, "application/zip"},
}

// genericContentType is the fallback when nothing is declared or detected.
const genericContentType = "application/octet-stream"

// DetectContentType sniffs the content type from the first bytes of data.
func DetectContentType(data []byte) string {
	for _, m := range magicNumbers {
		if bytes.HasPrefix(data, m.prefix) {
			return m.contentType
		}
	}
	return genericContentType
}
