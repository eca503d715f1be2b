package calendar

import "time"

// Bucketer maps an epoch millisecond timestamp to a zero-based bucket index.
type Bucketer func(ts int64) int

// BucketOfDay returns the local hour, 0..23.
func BucketOfDay(ts int64, loc *time.Location) int {
	return time.UnixMilli(ts).In(loc).Hour()
}

// BucketOfWeek returns the weekday with Monday=0 and Sunday=6.
func BucketOfWeek(ts int64, loc *time.Location) int {
	return MondayOffset(time.UnixMilli(ts).In(loc).Weekday())
}

// BucketOfMonth returns the local day of month, 1..DaysInMonth.
func BucketOfMonth(ts int64, loc *time.Location) int {
	return time.UnixMilli(ts).In(loc).Day()
}

func ByHour(loc *time.Location) Bucketer {
	return func(ts int64) int { return BucketOfDay(ts, loc) }
}

func ByWeekday(loc *time.Location) Bucketer {
	return func(ts int64) int { return BucketOfWeek(ts, loc) }
}

// ByMonthDay is zero-based: the 1st maps to 0.
func ByMonthDay(loc *time.Location) Bucketer {
	return func(ts int64) int { return BucketOfMonth(ts, loc) - 1 }
}
