package calendar

import (
	"fmt"
	"time"

	"pocketpal/internal/core"
)

// PeriodStrategy bundles the window and bucketing rules of one reporting period.
type PeriodStrategy interface {
	// Window returns the period containing now.
	Window(now time.Time) Window
	// Buckets returns the number of chart buckets for the period containing now.
	Buckets(now time.Time) int
	// Bucketer maps a timestamp to its bucket index in now's location.
	Bucketer(now time.Time) Bucketer
}

// DayStrategy charts one day by hour.
type DayStrategy struct{}

func (DayStrategy) Window(now time.Time) Window     { return DayWindow(now) }
func (DayStrategy) Buckets(time.Time) int           { return 24 }
func (DayStrategy) Bucketer(now time.Time) Bucketer { return ByHour(now.Location()) }

// WeekStrategy charts one week by weekday, Monday first.
type WeekStrategy struct{}

func (WeekStrategy) Window(now time.Time) Window     { return WeekWindow(now) }
func (WeekStrategy) Buckets(time.Time) int           { return 7 }
func (WeekStrategy) Bucketer(now time.Time) Bucketer { return ByWeekday(now.Location()) }

// MonthStrategy charts one month by day of month.
type MonthStrategy struct{}

func (MonthStrategy) Window(now time.Time) Window     { return MonthWindow(now) }
func (MonthStrategy) Buckets(now time.Time) int       { return DaysInMonth(now) }
func (MonthStrategy) Bucketer(now time.Time) Bucketer { return ByMonthDay(now.Location()) }

var periodStrategies = map[core.Period]PeriodStrategy{
	core.PeriodDay:   DayStrategy{},
	core.PeriodWeek:  WeekStrategy{},
	core.PeriodMonth: MonthStrategy{},
}

// StrategyFor returns the strategy registered for a period.
func StrategyFor(p core.Period) (PeriodStrategy, error) {
	s, ok := periodStrategies[p]
	if !ok {
		return nil, fmt.Errorf("unknown period: %s", p)
	}
	return s, nil
}
