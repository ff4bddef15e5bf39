// Package calendar implements the farm's in-game clock: a year/month/day
// triple with twelve months of a configurable number of days.
package calendar

import (
	"fmt"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/models"
)

const MonthsPerYear = 12

// Epoch is the first day of the game. The clock never goes below it.
var Epoch = GameDate{Year: 1, Month: 1, Day: 1}

type GameDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (d GameDate) String() string {
	return fmt.Sprintf("Year %d, Month %d, Day %d", d.Year, d.Month, d.Day)
}

func Of(f *models.Farm) GameDate {
	return GameDate{Year: f.CurrentYear, Month: f.CurrentMonth, Day: f.CurrentDay}
}

func Apply(f *models.Farm, d GameDate) {
	f.CurrentYear = d.Year
	f.CurrentMonth = d.Month
	f.CurrentDay = d.Day
}

func Advance(d GameDate, daysPerMonth int) GameDate {
	d.Day++
	if d.Day > daysPerMonth {
		d.Day = 1
		d.Month++
		if d.Month > MonthsPerYear {
			d.Month = 1
			d.Year++
		}
	}
	return d
}

// Retreat steps one day back. It fails at the epoch and leaves d unchanged.
func Retreat(d GameDate, daysPerMonth int) (GameDate, error) {
	if d == Epoch {
		return d, apperr.OutOfRange("Cannot go before %s", Epoch)
	}
	d.Day--
	if d.Day < 1 {
		d.Day = daysPerMonth
		d.Month--
		if d.Month < 1 {
			d.Month = MonthsPerYear
			d.Year--
		}
	}
	return d, nil
}

func Validate(d GameDate, daysPerMonth int) error {
	if d.Year < 1 {
		return apperr.Validation("Year must be at least 1")
	}
	if d.Month < 1 || d.Month > MonthsPerYear {
		return apperr.Validation("Month must be between 1 and %d", MonthsPerYear)
	}
	if d.Day < 1 || d.Day > daysPerMonth {
		return apperr.Validation("Day must be between 1 and %d", daysPerMonth)
	}
	return nil
}
