package repository

import (
	"time"

	"github.com/jask/mathverbal/internal/database"
)

// Translation represents a translation history row.
type Translation struct {
	ID         string    `json:"id"`
	Phrase     string    `json:"phrase"`
	Expression string    `json:"expression"`
	PatternID  string    `json:"patternId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Mistake represents a recorded practice mistake.
type Mistake struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feedback represents a user report about a translation.
type Feedback struct {
	ID        string    `json:"id"`
	Phrase    string    `json:"phrase"`
	Expected  string    `json:"expected"`
	Issue     string    `json:"issue"`
	CreatedAt time.Time `json:"createdAt"`
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return database.Now()
	}
	return t.UTC()
}
