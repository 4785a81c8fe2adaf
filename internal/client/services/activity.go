package services

import (
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/impify/internal/client/models"
)

// Activity is one line of the dashboard's recent-activity feed.
type Activity struct {
	Title       string
	Description string
	Timestamp   string
	Type        string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// RelativeDate renders raw relative to now using whole days rounded up:
// up to one day is "Today", two is "Yesterday", up to a week is "N days
// ago", anything older is the calendar date.
func RelativeDate(raw string, now time.Time) string {
	t, err := parseTimestamp(raw, now.Location())
	if err != nil {
		return "Unknown date"
	}

	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))

	switch {
	case days <= 1:
		return "Today"
	case days == 2:
		return "Yesterday"
	case days <= 7:
		return fmt.Sprintf("%d days ago", days-1)
	default:
		return t.Format("Jan 2, 2006")
	}
}

// RecentActivity summarizes the first four notes.
func RecentActivity(notes []models.Note, now time.Time) []Activity {
	n := min(len(notes), 4)
	out := make([]Activity, 0, n)
	for _, note := range notes[:n] {
		a := Activity{
			Title:       note.Title,
			Description: "Notes uploaded",
			Timestamp:   RelativeDate(note.CreatedAt, now),
			Type:        "note",
		}
		if note.NoteType == models.NoteTypeQuestionPaper {
			a.Description = "Question paper analyzed"
			a.Type = "upload"
		}
		out = append(out, a)
	}
	return out
}
