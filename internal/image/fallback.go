package image

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const genericIcon = "📚"

var wordIcons = map[string]string{
	// food
	"apple": "🍎", "banana": "🍌", "orange": "🍊", "cake": "🍰", "bread": "🍞",
	"milk": "🥛", "water": "💧", "rice": "🍚", "egg": "🥚", "fish": "🐟",
	"cookie": "🍪", "pizza": "🍕", "burger": "🍔", "cheese": "🧀", "honey": "🍯",
	"tea": "🍵", "coffee": "☕", "juice": "🧃", "soup": "🍲", "pasta": "🍝",
	"broccoli": "🥦", "strawberry": "🍓", "cherry": "🍒", "grape": "🍇", "lemon": "🍋",
	"chocolate": "🍫", "ice cream": "🍦", "donut": "🍩", "chips": "🍟", "coconut": "🥥",

	// animals
	"cat": "🐱", "dog": "🐶", "bird": "🐦", "rabbit": "🐰", "elephant": "🐘",
	"lion": "🦁", "bear": "🐻", "tiger": "🐯", "monkey": "🐵", "horse": "🐴",
	"cow": "🐄", "pig": "🐷", "sheep": "🐑", "duck": "🦆", "chicken": "🐔",
	"mouse": "🐭", "frog": "🐸", "snake": "🐍", "turtle": "🐢",

	// body
	"head": "👤", "hand": "✋", "foot": "🦶", "eye": "👁️", "ear": "👂",

	// family
	"mom": "👩", "dad": "👨", "baby": "👶", "boy": "👦", "girl": "👧",
	"grandma": "👵", "grandpa": "👴",

	// school and play
	"book": "📚", "pen": "🖊️", "pencil": "✏️", "school": "🏫", "bag": "🎒",
	"desk": "🪑", "toy": "🧸", "ball": "⚽", "game": "🎲", "music": "🎵",

	// nature
	"sun": "☀️", "moon": "🌙", "star": "⭐", "tree": "🌳", "flower": "🌸",
	"grass": "🌱", "cloud": "☁️", "rain": "🌧️", "snow": "❄️", "fire": "🔥",

	// actions and feelings
	"run": "🏃", "walk": "🚶", "jump": "🦘", "dance": "💃", "sing": "🎤",
	"read": "📖", "write": "✍️", "play": "🎮", "sleep": "😴", "eat": "🍽️",
	"happy": "😊", "sad": "😢", "good": "👍", "bad": "👎",
}

type iconTheme struct {
	background string
	stroke     string
}

var iconThemes = []iconTheme{
	{"#FFF3E0", "#FF9800"},
	{"#E8F5E8", "#4CAF50"},
	{"#E3F2FD", "#2196F3"},
	{"#F3E5F5", "#9C27B0"},
	{"#FFEBEE", "#F44336"},
}

// IconFor returns the emoji for word, or the generic book icon
func IconFor(word string) string {
	if icon, ok := wordIcons[strings.ToLower(strings.TrimSpace(word))]; ok {
		return icon
	}
	return genericIcon
}

// FallbackSVG renders the 64x64 icon card for word
func FallbackSVG(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	theme := iconThemes[len(w)%len(iconThemes)]
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64" viewBox="0 0 64 64">`+
		`<rect x="2" y="2" width="60" height="60" rx="12" fill="%s" stroke="%s" stroke-width="2"/>`+
		`<text x="32" y="38" text-anchor="middle" font-size="32" dominant-baseline="middle">%s</text>`+
		`</svg>`, theme.background, theme.stroke, IconFor(w))
}

// FallbackIcon returns the icon card for word as a data URL
func FallbackIcon(word string) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(FallbackSVG(word)))
}

// IsFallbackIcon reports whether url is an icon card
func IsFallbackIcon(url string) bool {
	return strings.HasPrefix(url, "data:image/svg+xml")
}
