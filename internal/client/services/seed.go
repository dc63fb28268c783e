package services

import (
	"time"

	"github.com/dmitrijs2005/policylogs/internal/client/models"
)

// SeedProvider supplies placeholder records shown when the very first
// refresh fails. A nil provider disables the fallback.
type SeedProvider interface {
	Seed() []models.LogRecord
}

// NoSeed never supplies anything.
type NoSeed struct{}

// Seed returns nothing.
func (NoSeed) Seed() []models.LogRecord { return nil }

// FixtureSeed returns three demo records dated relative to Now.
type FixtureSeed struct {
	Now func() time.Time
}

// Seed returns fresh copies of the demo records.
func (f FixtureSeed) Seed() []models.LogRecord {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	t := now().UTC()
	ago := func(d time.Duration) models.Timestamp { return models.NewTimestamp(t.Add(-d)) }
	const day = 24 * time.Hour

	return []models.LogRecord{
		{
			ID:          1,
			Title:       "Data Privacy Policy Update",
			Description: "Updated our data privacy policy to comply with new regulations and improve user data protection.",
			AuthorName:  "John Doe",
			CreatedAt:   ago(2 * day),
			UpdatedAt:   ago(day),
			Status:      models.StatusActive,
			Tags: []models.Tag{
				{ID: 1, Name: "Privacy", Color: "#007bff"},
				{ID: 2, Name: "Compliance", Color: "#28a745"},
			},
			Comments: []models.Comment{
				{ID: 1, Content: "This looks good. When will it go into effect?", AuthorName: "Jane Smith", CreatedAt: ago(time.Hour)},
			},
			CommentCount: 1,
		},
		{
			ID:          2,
			Title:       "Remote Work Guidelines",
			Description: "Establishing comprehensive guidelines for remote work arrangements, including security protocols and communication standards.",
			AuthorName:  "Alice Johnson",
			CreatedAt:   ago(5 * day),
			UpdatedAt:   ago(3 * day),
			Status:      models.StatusPending,
			Tags: []models.Tag{
				{ID: 3, Name: "Remote Work", Color: "#ffc107"},
				{ID: 4, Name: "Security", Color: "#dc3545"},
			},
			Comments: []models.Comment{},
		},
		{
			ID:          3,
			Title:       "Code of Conduct Revision",
			Description: "Annual review and revision of the company code of conduct to address new workplace scenarios and expectations.",
			AuthorName:  "Bob Wilson",
			CreatedAt:   ago(7 * day),
			UpdatedAt:   ago(7 * day),
			Status:      models.StatusInactive,
			Tags: []models.Tag{
				{ID: 5, Name: "HR", Color: "#6f42c1"},
				{ID: 6, Name: "Ethics", Color: "#20c997"},
			},
			Comments: []models.Comment{
				{ID: 2, Content: "We should include guidelines for social media usage.", AuthorName: "Carol Brown", CreatedAt: ago(2 * day)},
				{ID: 3, Content: "Agreed. Also need to address AI tool usage.", AuthorName: "David Lee", CreatedAt: ago(day)},
			},
			CommentCount: 2,
		},
	}
}
