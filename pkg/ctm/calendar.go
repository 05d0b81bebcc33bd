package ctm

import (
	"crypto/sha256"
	"fmt"
	"time"
)

const DateFormat = "2006-01-02"

// Calendar is the service pattern a trip runs on: a weekday pattern bounded
// by a validity period, plus explicit added and removed dates.
type Calendar struct {
	PrimaryIdentifier string

	Monday    bool
	Tuesday   bool
	Wednesday bool
	Thursday  bool
	Friday    bool
	Saturday  bool
	Sunday    bool

	StartDate time.Time
	EndDate   time.Time

	AddedDates   []time.Time
	RemovedDates []time.Time
}

func (c *Calendar) Identifier() string {
	return c.PrimaryIdentifier
}

func (c *Calendar) GetRunningDays() []string {
	days := []string{}

	if c.Monday {
		days = append(days, "Monday")
	}
	if c.Tuesday {
		days = append(days, "Tuesday")
	}
	if c.Wednesday {
		days = append(days, "Wednesday")
	}
	if c.Thursday {
		days = append(days, "Thursday")
	}
	if c.Friday {
		days = append(days, "Friday")
	}
	if c.Saturday {
		days = append(days, "Saturday")
	}
	if c.Sunday {
		days = append(days, "Sunday")
	}

	return days
}

// IsEmpty reports whether the calendar can never be active: no weekday within
// its validity period and no added dates.
func (c *Calendar) IsEmpty() bool {
	hasWeekday := c.Monday || c.Tuesday || c.Wednesday || c.Thursday || c.Friday || c.Saturday || c.Sunday

	if hasWeekday && !c.EndDate.Before(c.StartDate) {
		return false
	}

	return len(c.AddedDates) == 0
}

// ContentChecksum hashes every attribute except the identifier. Two calendars
// with equal checksums describe the same service pattern and are collapsed
// into one during a merge.
func (c *Calendar) ContentChecksum() string {
	hash := sha256.New()

	for _, day := range c.GetRunningDays() {
		hash.Write([]byte(day))
	}
	hash.Write([]byte(c.StartDate.Format(DateFormat)))
	hash.Write([]byte(c.EndDate.Format(DateFormat)))

	for _, date := range c.AddedDates {
		hash.Write([]byte("+" + date.Format(DateFormat)))
	}
	for _, date := range c.RemovedDates {
		hash.Write([]byte("-" + date.Format(DateFormat)))
	}

	return fmt.Sprintf("%x", hash.Sum(nil))
}
