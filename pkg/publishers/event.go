package publishers

import "time"

// Event represents a page like-count observation published downstream.
// PreviousLikes is nil the first time a page is observed.
type Event struct {
	PageID        string    `json:"page_id"`
	PageName      string    `json:"page_name"`
	Likes         int64     `json:"likes"`
	PreviousLikes *int64    `json:"previous_likes,omitempty"`
	Delta         int64     `json:"delta"`
	ObservedAt    time.Time `json:"observed_at"`
}

// NewEvent constructs an Event for the given page and observed count.
func NewEvent(pageID, pageName string, likes int64, previous *int64) Event {
	evt := Event{
		PageID:     pageID,
		PageName:   pageName,
		Likes:      likes,
		ObservedAt: time.Now().UTC(),
	}
	if previous != nil {
		prev := *previous
		evt.PreviousLikes = &prev
		evt.Delta = likes - prev
	}
	return evt
}
