package mood

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidDate = errors.New("invalid calendar date")

// Key 是情绪记录的自然键：一个用户一天最多一条。
type Key struct {
	UserID string
	Year   int
	Month  int
	Day    int
}

// KeyFor builds the key of the UTC calendar day containing t.
func KeyFor(userID string, t time.Time) Key {
	y, m, d := t.UTC().Date()
	return Key{UserID: userID, Year: y, Month: int(m), Day: d}
}

// Validate 检查日期是否真实存在，例如拒绝 2月30日。
func (k Key) Validate() error {
	if k.Month < 1 || k.Month > 12 || k.Day < 1 || k.Day > 31 || k.Year < 1 {
		return fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, k.Year, k.Month, k.Day)
	}
	t := time.Date(k.Year, time.Month(k.Month), k.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != k.Year || int(t.Month()) != k.Month || t.Day() != k.Day {
		return fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, k.Year, k.Month, k.Day)
	}
	return nil
}

// Record 是某用户某天的情绪。
type Record struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Day    int    `json:"day"`
	Main   Main   `json:"main"`
	Sub    Sub    `json:"sub"`
	Lang   string `json:"lang,omitempty"`
}

// Key returns the natural key of the record.
func (r Record) Key() Key {
	return Key{UserID: r.UserID, Year: r.Year, Month: r.Month, Day: r.Day}
}

// Pair returns the (main, sub) of the record without validating it.
func (r Record) Pair() Pair {
	return Pair{Main: r.Main, Sub: r.Sub}
}
