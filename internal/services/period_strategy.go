// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for budget window calculation.
// Each period type (daily, weekly, monthly, yearly) has its own calculator
// that encapsulates the calendar arithmetic for locating the window
// containing a reference date.

package services

import (
	"fmt"
	"time"

	"github.com/AliGanji14/cost-management/internal/core"
)

// WindowCalculator is the strategy interface for locating budget windows.
// Windows are half-open [start, end) intervals anchored at the budget's
// start date.
type WindowCalculator interface {
	// WindowAt returns the window containing ref. The second return is
	// false when ref falls before the anchor, where no window exists.
	WindowAt(anchor, ref core.Date) (core.Window, bool)
}

// DailyCalculator implements WindowCalculator for daily budgets.
type DailyCalculator struct{}

// WindowAt returns the single day containing ref.
func (DailyCalculator) WindowAt(anchor, ref core.Date) (core.Window, bool) {
	if ref.Before(anchor.Time) {
		return core.Window{}, false
	}
	return core.Window{
		Start: core.Date{Time: ref.Time},
		End:   core.Date{Time: ref.AddDate(0, 0, 1)},
	}, true
}

// WeeklyCalculator implements WindowCalculator for weekly budgets.
type WeeklyCalculator struct{}

// WindowAt returns the seven-day span starting a whole number of weeks
// after the anchor.
func (WeeklyCalculator) WindowAt(anchor, ref core.Date) (core.Window, bool) {
	if ref.Before(anchor.Time) {
		return core.Window{}, false
	}
	days := int(ref.Sub(anchor.Time) / (24 * time.Hour))
	weeks := days / 7
	start := anchor.AddDate(0, 0, weeks*7)
	return core.Window{
		Start: core.Date{Time: start},
		End:   core.Date{Time: start.AddDate(0, 0, 7)},
	}, true
}

// MonthlyCalculator implements WindowCalculator for monthly budgets.
type MonthlyCalculator struct{}

// WindowAt returns the month-long window containing ref. Boundaries keep
// the anchor's day of month, clamped to the last day of short months.
// Clamping always starts from the original anchor day, so a January 31st
// anchor yields February 29th and March 31st boundaries rather than
// drifting to the smallest month seen.
func (MonthlyCalculator) WindowAt(anchor, ref core.Date) (core.Window, bool) {
	if ref.Before(anchor.Time) {
		return core.Window{}, false
	}
	k := (ref.Year()-anchor.Year())*12 + ref.Month() - anchor.Month()
	if ref.Before(shiftMonths(anchor, k).Time) {
		k--
	}
	return core.Window{
		Start: shiftMonths(anchor, k),
		End:   shiftMonths(anchor, k+1),
	}, true
}

// YearlyCalculator implements WindowCalculator for yearly budgets.
type YearlyCalculator struct{}

// WindowAt returns the year-long window containing ref. A February 29th
// anchor clamps to February 28th in non-leap years and recovers the 29th
// when a leap year comes around.
func (YearlyCalculator) WindowAt(anchor, ref core.Date) (core.Window, bool) {
	if ref.Before(anchor.Time) {
		return core.Window{}, false
	}
	k := ref.Year() - anchor.Year()
	if ref.Before(shiftYears(anchor, k).Time) {
		k--
	}
	return core.Window{
		Start: shiftYears(anchor, k),
		End:   shiftYears(anchor, k+1),
	}, true
}

// shiftMonths moves the anchor forward k months, clamping the anchor's
// day of month to the target month's length.
func shiftMonths(anchor core.Date, k int) core.Date {
	total := anchor.Year()*12 + anchor.Month() - 1 + k
	year, month := total/12, total%12+1
	return core.NewDate(year, month, clampDay(year, month, anchor.Day()))
}

// shiftYears moves the anchor forward k years, clamping the day the same
// way.
func shiftYears(anchor core.Date, k int) core.Date {
	year := anchor.Year() + k
	return core.NewDate(year, anchor.Month(), clampDay(year, anchor.Month(), anchor.Day()))
}

func clampDay(year, month, day int) int {
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

// windowStrategies maps period types to their corresponding calculators.
// This registry enables O(1) lookup and easy extension for new period types.
var windowStrategies = map[core.Period]WindowCalculator{
	core.Daily:   DailyCalculator{},
	core.Weekly:  WeeklyCalculator{},
	core.Monthly: MonthlyCalculator{},
	core.Yearly:  YearlyCalculator{},
}

// GetWindowCalculator returns the appropriate calculator for a period type.
// Returns an error if the period type is not supported.
func GetWindowCalculator(period core.Period) (WindowCalculator, error) {
	calculator, ok := windowStrategies[period]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidPeriodSpec, period)
	}
	return calculator, nil
}

// RegisterWindowCalculator allows registering custom calculators for new
// period types. This supports the Open/Closed principle by allowing
// extension without modification.
func RegisterWindowCalculator(period core.Period, calculator WindowCalculator) {
	windowStrategies[period] = calculator
}
