package scheduler

import "time"

// Interval returns how long the given year stays current before the clock
// advances. Decade years linger so players can absorb the new market, and the
// pacing slows in later eras as portfolios grow.
func Interval(year int) time.Duration {
	return time.Duration(intervalSeconds(year)) * time.Second
}

func intervalSeconds(year int) int {
	switch {
	case year >= 1900 && year <= 1949:
		if year%10 == 0 {
			return 30
		}
		return 18
	case year >= 1950 && year <= 1989:
		if year%10 == 0 {
			return 30
		}
		return 25
	case year == 1990:
		return 40
	case year >= 1991 && year <= 1999:
		return 30
	case year == 2000:
		return 45
	case year >= 2001 && year <= 2009:
		return 30
	case year == 2010:
		return 45
	case year >= 2011 && year <= 2019:
		return 40
	case year >= 2020 && year <= 2023:
		return 45
	default:
		return 60
	}
}
