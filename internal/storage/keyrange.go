package storage

// KeyRange bounds an index query. A nil bound is unbounded; an open bound
// excludes the bound value itself.
type KeyRange struct {
	Lower     any
	Upper     any
	LowerOpen bool
	UpperOpen bool
}

// Bound returns a range between lower and upper.
func Bound(lower, upper any, lowerOpen, upperOpen bool) KeyRange {
	return KeyRange{Lower: lower, Upper: upper, LowerOpen: lowerOpen, UpperOpen: upperOpen}
}

// HalfOpen returns [lower, upper).
func HalfOpen(lower, upper any) KeyRange {
	return Bound(lower, upper, false, true)
}

// Only matches a single key.
func Only(key any) KeyRange {
	return Bound(key, key, false, false)
}
