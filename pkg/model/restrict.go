package model

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/travigo/transmodel/pkg/ctm"
	"github.com/travigo/transmodel/pkg/util"
)

// RestrictPeriod clamps every calendar to the [start, end] window. Calendars
// that can never be active afterwards are removed together with the trips
// running on them; call Sanitize afterwards to prune the frequencies and
// transfers this may have orphaned.
func (c *Collections) RestrictPeriod(start time.Time, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("restriction period ends (%s) before it starts (%s)", end.Format(ctm.DateFormat), start.Format(ctm.DateFormat))
	}

	within := func(date time.Time) bool {
		return !date.Before(start) && !date.After(end)
	}

	var emptied []string
	for _, id := range c.Calendars.IDs() {
		err := c.Calendars.Update(id, func(calendar *ctm.Calendar) {
			if calendar.StartDate.Before(start) {
				calendar.StartDate = start
			}
			if calendar.EndDate.After(end) {
				calendar.EndDate = end
			}

			util.InPlaceFilter(&calendar.AddedDates, within)
			util.InPlaceFilter(&calendar.RemovedDates, within)
		})
		if err != nil {
			return err
		}

		calendar, _ := c.Calendars.GetByID(id)
		if calendar.IsEmpty() {
			emptied = append(emptied, id)
		}
	}

	if len(emptied) == 0 {
		return nil
	}

	removedCalendars := map[string]bool{}
	for _, id := range emptied {
		if err := c.Calendars.Remove(id); err != nil {
			return err
		}
		removedCalendars[id] = true
	}

	var removedTrips int
	for _, id := range c.Trips.IDs() {
		trip, _ := c.Trips.GetByID(id)
		if removedCalendars[trip.CalendarRef] {
			if err := c.Trips.Remove(id); err != nil {
				return err
			}
			removedTrips++
		}
	}

	log.Info().
		Int("calendars", len(emptied)).
		Int("trips", removedTrips).
		Str("start", start.Format(ctm.DateFormat)).
		Str("end", end.Format(ctm.DateFormat)).
		Msg("Removed records outside restriction period")

	return nil
}
