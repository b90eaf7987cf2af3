package models

// UncategorizedID is the category assigned when a word has none
const UncategorizedID = "uncategorized"

// AllCategoryID is the pseudo category meaning "no filter"
const AllCategoryID = "all"

// Word is a vocabulary entry. Shared pool records are keyed by the
// normalized Word text; personal records are keyed by ID.
type Word struct {
	ID             string   `json:"id"`
	Word           string   `json:"word"`
	Translation    string   `json:"translation"`
	Example        string   `json:"example,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
	Categories     []string `json:"categories"`
	ReviewCount    int      `json:"reviewCount"`
	LastReviewTime int64    `json:"lastReviewTime,omitempty"`
	CreatedAt      int64    `json:"createdAt"`
	UpdatedAt      int64    `json:"updatedAt,omitempty"`
	EditedAt       int64    `json:"editedAt,omitempty"`
}

// NormalizeCategories returns a non-empty, de-duplicated category list
func NormalizeCategories(categories []string) []string {
	seen := make(map[string]bool, len(categories))
	result := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	if len(result) == 0 {
		return []string{UncategorizedID}
	}
	return result
}

// HasCategory reports whether the word belongs to the given category.
// The "all" category and the empty string match every word.
func (w Word) HasCategory(category string) bool {
	if category == "" || category == AllCategoryID {
		return true
	}
	for _, c := range w.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// SharedImageEntry is a generated image registered in the shared pool
type SharedImageEntry struct {
	Word        string `json:"word"`
	ImageURL    string `json:"imageUrl"`
	Prompt      string `json:"prompt"`
	GeneratedAt int64  `json:"generatedAt"`
	UsageCount  int    `json:"usageCount"`
	Quality     string `json:"quality"`
}

// PoolStats summarizes shared pool usage
type PoolStats struct {
	TotalImages          int          `json:"totalImages"`
	TotalWords           int          `json:"totalWords"`
	TotalUsage           int          `json:"totalUsage"`
	AverageUsagePerImage float64      `json:"averageUsagePerImage"`
	MostUsedWords        []UsageCount `json:"mostUsedWords"`
}

// UsageCount pairs a shared pool key with its usage count
type UsageCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}
