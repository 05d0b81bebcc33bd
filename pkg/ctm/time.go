package ctm

import "fmt"

// Time is a timetable time expressed in seconds after midnight. Values past
// 24:00:00 are legal and denote times on the day after the trip's operating
// day.
type Time int

func NewTime(hours int, minutes int, seconds int) Time {
	return Time(hours*3600 + minutes*60 + seconds)
}

func (t Time) Hours() int {
	return int(t) / 3600
}

func (t Time) Minutes() int {
	return (int(t) % 3600) / 60
}

func (t Time) Seconds() int {
	return int(t) % 60
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours(), t.Minutes(), t.Seconds())
}
