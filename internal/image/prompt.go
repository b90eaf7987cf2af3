package image

import (
	"fmt"
	"regexp"
	"strings"
)

const promptStyle = ", cute cartoon style, bright colors, simple illustration, child-friendly, educational"

// wordDescriptions maps concrete and abstract words to drawable scenes
var wordDescriptions = map[string]string{
	// animals
	"cat":      "orange cat",
	"dog":      "golden dog",
	"rabbit":   "white rabbit",
	"bird":     "blue bird",
	"elephant": "gray elephant",
	"lion":     "friendly lion",
	"bear":     "teddy bear",
	"tiger":    "an orange tiger",
	"monkey":   "a brown monkey",
	"duck":     "a yellow duck",
	"horse":    "a brown horse",
	"cow":      "a black and white cow",
	"pig":      "a pink pig",
	"sheep":    "a white sheep",
	"chicken":  "a white chicken",

	// food
	"apple":     "a red apple",
	"banana":    "a yellow banana",
	"orange":    "an orange fruit",
	"grape":     "purple grapes",
	"cake":      "a birthday cake",
	"bread":     "a slice of bread",
	"milk":      "a glass of milk",
	"egg":       "a white egg",
	"fish":      "a colorful fish",
	"rice":      "a bowl of rice",
	"juice":     "a glass of orange juice",
	"cookie":    "a chocolate chip cookie",
	"candy":     "a colorful candy",
	"ice cream": "an ice cream cone",

	// family
	"mom": "a kind mother",
	"dad": "a smiling father",

	// school subjects
	"history":   "an old book with ancient symbols",
	"math":      "a calculator with numbers",
	"science":   "a microscope with test tubes",
	"art":       "a paintbrush with colorful palette",
	"music":     "a piano with musical notes",
	"english":   "an open dictionary book",
	"geography": "a world map with compass",
	"biology":   "a plant with DNA helix",
	"chemistry": "laboratory beakers with colorful liquids",
	"physics":   "an atom model with electrons",

	// feelings
	"love":       "a red heart with gentle glow",
	"happiness":  "a smiling sun with warm rays",
	"sadness":    "a gentle rain cloud",
	"anger":      "a storm cloud with lightning",
	"fear":       "a small child with teddy bear",
	"hope":       "a sunrise over mountains",
	"peace":      "a white dove with olive branch",
	"friendship": "two hands shaking",
	"trust":      "a solid bridge over water",

	// abstract concepts
	"time":        "an elegant clock face",
	"space":       "stars and planets in galaxy",
	"freedom":     "a bird flying in open sky",
	"justice":     "balanced scales",
	"wisdom":      "an owl with graduation cap",
	"knowledge":   "a glowing lightbulb with books",
	"creativity":  "a magical wand with sparkling stars",
	"imagination": "a child with thought bubble of rainbow",
	"memory":      "a photo album with golden frames",
	"dream":       "a sleeping child with floating dream bubbles",

	// activities
	"learning":      "a child reading under a tree",
	"teaching":      "a teacher with blackboard",
	"thinking":      "a child with lightbulb above head",
	"understanding": "puzzle pieces fitting together",
	"communication": "two speech bubbles connecting",
	"cooperation":   "children building blocks together",
	"competition":   "a friendly race finish line",
	"celebration":   "colorful balloons and confetti",

	// words that render badly when drawn literally
	"cobweb":   "a delicate spider web with morning dew",
	"blind":    "a person with a white cane and guide dog",
	"door":     "a wooden door with a brass handle",
	"envelope": "a white envelope with a red heart stamp",
}

type abstractKind struct {
	name     string
	patterns []*regexp.Regexp
	scene    string
}

var abstractKinds = []abstractKind{
	{
		name:     "emotion",
		patterns: compileAll(`ness$`, `ity$`, `tion$`, `sion$`, `ment$`, `ful$`, `less$`, `^feel`, `^emot`, `^mood`, `^spirit`),
		scene:    "a gentle scene representing %s, with soft colors and peaceful atmosphere",
	},
	{
		name:     "concept",
		patterns: compileAll(`ology$`, `phy$`, `ics$`, `ism$`, `ist$`, `acy$`, `ure$`, `^theo`, `^philo`, `^psycho`, `^socio`),
		scene:    "symbolic representation of %s, with books, symbols, and educational elements",
	},
	{
		name:     "action",
		patterns: compileAll(`ing$`, `ance$`, `ence$`, `ship$`, `hood$`, `dom$`, `^inter`, `^trans`, `^pre`, `^post`),
		scene:    "a scene showing %s in action, with people or objects demonstrating the concept",
	},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(e)
	}
	return res
}

// abstractKindOf returns "emotion", "concept", "action" or ""
func abstractKindOf(word string) (abstractKind, bool) {
	for _, k := range abstractKinds {
		for _, p := range k.patterns {
			if p.MatchString(word) {
				return k, true
			}
		}
	}
	return abstractKind{}, false
}

// Describe returns the scene description used in the prompt for word
func Describe(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if d, ok := wordDescriptions[w]; ok {
		return d
	}
	if k, ok := abstractKindOf(w); ok {
		return fmt.Sprintf(k.scene, w)
	}
	article := "a"
	if w != "" && strings.ContainsRune("aeiou", rune(w[0])) {
		article = "an"
	}
	return article + " " + w
}

// BuildPrompt returns the full generation prompt for word
func BuildPrompt(word string) string {
	return Describe(word) + promptStyle
}

// Seed derives a stable seed from word so retries reuse the same composition
func Seed(word string) int32 {
	var h int32
	for _, r := range word {
		h = 31*h + int32(r)
	}
	if h < 0 {
		// -MinInt32 overflows back to itself; map it to 0
		if h == -h {
			return 0
		}
		h = -h
	}
	return h
}
