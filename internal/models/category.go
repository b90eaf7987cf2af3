package models

// Category groups words; default categories cannot be renamed or deleted
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsDefault bool   `json:"isDefault"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// SystemCategories are present in every personal store
var SystemCategories = []Category{
	{ID: AllCategoryID, Name: "全部", Color: "gray", IsDefault: true},
	{ID: UncategorizedID, Name: "未归类", Color: "slate", IsDefault: true},
}

// CategoryColors is the palette offered for user categories
var CategoryColors = []string{
	"blue", "green", "red", "yellow", "purple", "pink",
	"indigo", "orange", "teal", "cyan", "emerald", "rose",
}

// IsSystemCategory reports whether id names a built-in category
func IsSystemCategory(id string) bool {
	for _, c := range SystemCategories {
		if c.ID == id {
			return true
		}
	}
	return false
}
