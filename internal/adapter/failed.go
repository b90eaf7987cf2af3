package adapter

import (
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minPayloadLength is the shortest plausible embedded image
const minPayloadLength = 100

const pendingMarker = "AI_PENDING"

var failureMarkers = []string{
	"重试", "生成中", "retry", "failed", "error", "失败", "错误", pendingMarker, "black", "screen",
}

// IsFailedImage reports whether imageURL looks like a failed or pending
// generation. Empty values are not failures. For embedded payloads only
// the media type header is searched for markers, so random base64 text
// cannot match. Remote URLs skip the length check and only match whole
// words of the file name.
func IsFailedImage(imageURL string) bool {
	if imageURL == "" {
		return false
	}
	if strings.HasPrefix(imageURL, "ERROR:") || strings.HasPrefix(imageURL, "blob:") {
		return true
	}
	if isRemote(imageURL) {
		return remoteFailed(imageURL)
	}

	searched := imageURL
	if strings.HasPrefix(imageURL, "data:") {
		if len(imageURL) < minPayloadLength {
			return true
		}
		if i := strings.IndexByte(imageURL, ','); i >= 0 {
			searched = imageURL[:i]
		}
	} else if len(imageURL) < minPayloadLength {
		return true
	}

	for _, m := range failureMarkers {
		if strings.Contains(searched, m) {
			return true
		}
	}
	return false
}

// remoteFailed matches markers against the words of the file name, so
// blackboard.png passes while black-screen.png does not
func remoteFailed(imageURL string) bool {
	if strings.Contains(imageURL, pendingMarker) {
		return true
	}
	u, err := url.Parse(imageURL)
	if err != nil {
		return true
	}
	name := path.Base(u.Path)
	name = strings.ToLower(strings.TrimSuffix(name, path.Ext(name)))
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, w := range words {
		for _, m := range failureMarkers {
			if m[0] >= utf8.RuneSelf {
				if strings.Contains(w, m) {
					return true
				}
			} else if w == m {
				return true
			}
		}
	}
	return false
}

func isRemote(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
