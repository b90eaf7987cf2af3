package models

// MaxMasteryLevel is the highest mastery a word can reach
const MaxMasteryLevel = 5

// LearningProgress tracks review outcomes for one personal word
type LearningProgress struct {
	WordID          string  `json:"wordId"`
	CorrectCount    int     `json:"correctCount"`
	IncorrectCount  int     `json:"incorrectCount"`
	LastReviewAt    int64   `json:"lastReviewAt"`
	MasteryLevel    int     `json:"masteryLevel"`
	ReviewIntervals []int64 `json:"reviewIntervals"`
}

// RecordAnswer applies a review answer at time now (epoch ms).
// Correct answers raise mastery by one, incorrect answers lower it by one.
// The gap since the previous review is appended to ReviewIntervals.
func (p *LearningProgress) RecordAnswer(correct bool, now int64) {
	if p.LastReviewAt > 0 && now > p.LastReviewAt {
		p.ReviewIntervals = append(p.ReviewIntervals, now-p.LastReviewAt)
	}
	p.LastReviewAt = now

	if correct {
		p.CorrectCount++
		if p.MasteryLevel < MaxMasteryLevel {
			p.MasteryLevel++
		}
		return
	}

	p.IncorrectCount++
	if p.MasteryLevel > 0 {
		p.MasteryLevel--
	}
}

// StudyGoals holds the daily targets
type StudyGoals struct {
	DailyNewWords int `json:"dailyNewWords"`
	DailyReviews  int `json:"dailyReviews"`
}

// DisplayPreferences controls how flashcards are rendered
type DisplayPreferences struct {
	ShowTranslation bool   `json:"showTranslation"`
	ShowExample     bool   `json:"showExample"`
	CardStyle       string `json:"cardStyle"`
}

// UserSettings is the per-identity settings record
type UserSettings struct {
	PreferredCategories []string           `json:"preferredCategories"`
	StudyGoals          StudyGoals         `json:"studyGoals"`
	DisplayPreferences  DisplayPreferences `json:"displayPreferences"`
}

// DefaultSettings returns the settings used when none are stored
func DefaultSettings() UserSettings {
	return UserSettings{
		PreferredCategories: []string{},
		StudyGoals: StudyGoals{
			DailyNewWords: 5,
			DailyReviews:  20,
		},
		DisplayPreferences: DisplayPreferences{
			ShowTranslation: true,
			ShowExample:     true,
			CardStyle:       "simple",
		},
	}
}
