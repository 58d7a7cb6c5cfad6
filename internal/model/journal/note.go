package journal

import "time"

// DateLayout is the wire format of Note.Date.
const DateLayout = "2006-01-02"

// Note 是用户写下的一篇日记。
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// Day parses Date into a UTC midnight.
func (n Note) Day() (time.Time, error) {
	return time.ParseInLocation(DateLayout, n.Date, time.UTC)
}
