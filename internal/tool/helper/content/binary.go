package content

// binarySampleSize is the number of leading bytes scanned for NUL bytes, matching Git's heuristic.
const binarySampleSize = 8000

// IsBinaryContent reports whether content looks binary: a NUL byte within the sample.
// UTF-16 and UTF-32 byte order marks are treated as text.
func IsBinaryContent(content []byte) bool {
	if hasUnicodeBOM(content) {
		return false
	}
	sampleSize := min(len(content), binarySampleSize)
	for i := range sampleSize {
		if content[i] == 0 {
			return true
		}
	}
	return false
}

func hasUnicodeBOM(b []byte) bool {
	switch {
	case len(b) >= 4 && b[0] == 0x00 && b[1] == 0x00 && b[2] == 0xFE && b[3] == 0xFF:
		return true // UTF-32 BE
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		return true // UTF-16 LE, also UTF-32 LE
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return true // UTF-16 BE
	}
	return false
}
