package anki

import (
	"encoding/csv"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"codeberg.org/snonux/wordflash/internal"
	"codeberg.org/snonux/wordflash/internal/image"
	"codeberg.org/snonux/wordflash/internal/models"
)

// MediaFolder is the directory next to the CSV file that Anki copies into
// its collection.media
const MediaFolder = "collection.media"

// Card represents a single Anki flashcard. The picture is the front side.
type Card struct {
	Word        string
	Translation string
	Example     string
	Image       string // media file name or remote URL
	Tags        []string
}

// GeneratorOptions configures the Anki export
type GeneratorOptions struct {
	OutputDir      string // Directory receiving the CSV file and media folder
	DeckName       string // Base name of the CSV file
	IncludeHeaders bool   // Write Anki's #separator/#html/#tags file headers
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputDir:      ".",
		DeckName:       "wordflash",
		IncludeHeaders: true,
	}
}

// Generator creates Anki-compatible import files
type Generator struct {
	options *GeneratorOptions
	cards   []Card
	media   map[string][]byte
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{
		options: options,
		cards:   make([]Card, 0),
		media:   make(map[string][]byte),
	}
}

// AddWord turns a word into a card. Embedded pictures become media files,
// remote pictures are referenced by URL. Failed pictures are left out.
func (g *Generator) AddWord(w models.Word, failed func(string) bool) error {
	card := Card{
		Word:        w.Word,
		Translation: w.Translation,
		Example:     w.Example,
		Tags:        w.Categories,
	}

	switch {
	case w.ImageURL == "" || (failed != nil && failed(w.ImageURL)):
	case image.IsDataURL(w.ImageURL):
		mime, data, err := image.ParseDataURL(w.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to decode picture of %q: %w", w.Word, err)
		}
		card.Image = g.addMedia(w.Word, mime, data)
	default:
		card.Image = w.ImageURL
	}

	g.cards = append(g.cards, card)
	return nil
}

// addMedia stores data under a unique file name derived from word
func (g *Generator) addMedia(word, mime string, data []byte) string {
	ext := ".png"
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		ext = m.Extension()
	} else if m := mimetype.Detect(data); m.Extension() != "" {
		ext = m.Extension()
	}

	base := internal.SanitizeFilename(word)
	if base == "" {
		base = "word_" + internal.ShortHash(word, 8)
	}
	name := base + ext
	for i := 1; ; i++ {
		if _, taken := g.media[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	g.media[name] = data
	return name
}

// GetCards returns a slice of all cards for modification
func (g *Generator) GetCards() []Card {
	return g.cards
}

// Generate writes the CSV file and the media folder and returns the CSV path
func (g *Generator) Generate() (string, error) {
	if err := os.MkdirAll(g.options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if len(g.media) > 0 {
		mediaDir := filepath.Join(g.options.OutputDir, MediaFolder)
		if err := os.MkdirAll(mediaDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create media directory: %w", err)
		}
		for name, data := range g.media {
			if err := os.WriteFile(filepath.Join(mediaDir, name), data, 0644); err != nil {
				return "", fmt.Errorf("failed to write media file: %w", err)
			}
		}
	}

	path := filepath.Join(g.options.OutputDir, g.options.DeckName+".csv")
	if err := g.GenerateCSV(path); err != nil {
		return "", err
	}
	return path, nil
}

// GenerateCSV writes the cards to path. Columns are picture, word,
// translation, example and tags.
func (g *Generator) GenerateCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if g.options.IncludeHeaders {
		if _, err := fmt.Fprint(file, "#separator:Comma\n#html:true\n#tags column:5\n"); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	for _, card := range g.cards {
		record := []string{
			formatImageField(card.Image),
			html.EscapeString(card.Word),
			html.EscapeString(card.Translation),
			html.EscapeString(card.Example),
			formatTags(card.Tags),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

// formatImageField formats the picture reference for Anki
func formatImageField(src string) string {
	if src == "" {
		return ""
	}
	return fmt.Sprintf(`<img src="%s">`, html.EscapeString(src))
}

// formatTags joins categories as Anki tags. Tags cannot contain spaces.
func formatTags(categories []string) string {
	tags := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == models.UncategorizedID {
			continue
		}
		tags = append(tags, strings.ReplaceAll(c, " ", "_"))
	}
	return strings.Join(tags, " ")
}

// Stats returns statistics about the card collection
func (g *Generator) Stats() (totalCards, withImages, mediaFiles int) {
	totalCards = len(g.cards)
	for _, card := range g.cards {
		if card.Image != "" {
			withImages++
		}
	}
	return totalCards, withImages, len(g.media)
}
