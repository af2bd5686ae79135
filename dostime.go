package zipcore

import "time"

// MinDOSTime is the packed encoding of 1980-01-01 00:00:00, the earliest representable DOS date/time.
const MinDOSTime uint32 = 0x00210000

// MaxDOSTime is the packed encoding of 2107-12-31 23:59:58, the latest representable DOS date/time.
const MaxDOSTime uint32 = 0xFF9FBF7D

// PackDOSTime packs the given broken-down date/time fields into a 32-bit MS-DOS date+time value.
//
// Bits 0..4 hold second/2 (0..29), 5..10 hold minute (0..59), 11..15 hold hour (0..23), 16..20 hold day
// of month (1..31), 21..24 hold month (1..12), 25..31 hold year-1980 (0..127). It returns an InvalidValue
// error if any field is out of its valid range, including days-in-month for the given year.
func PackDOSTime(year, month, day, hour, minute, second int) (uint32, error) {
	if year < 1980 || year > 2107 {
		return 0, newErr(InvalidValue, "year out of range [1980,2107]", nil)
	}
	if month < 1 || month > 12 {
		return 0, newErr(InvalidValue, "month out of range [1,12]", nil)
	}
	if day < 1 || day > daysInMonth(year, month) {
		return 0, newErr(InvalidValue, "day out of range for given year/month", nil)
	}
	if hour < 0 || hour > 23 {
		return 0, newErr(InvalidValue, "hour out of range [0,23]", nil)
	}
	if minute < 0 || minute > 59 {
		return 0, newErr(InvalidValue, "minute out of range [0,59]", nil)
	}
	if second < 0 || second > 59 {
		return 0, newErr(InvalidValue, "second out of range [0,59]", nil)
	}

	dosDate := uint32(day) | uint32(month)<<5 | uint32(year-1980)<<9
	dosTime := uint32(second/2) | uint32(minute)<<5 | uint32(hour)<<11
	return dosDate<<16 | dosTime, nil
}

// UnpackDOSTime is the total inverse of PackDOSTime.
func UnpackDOSTime(v uint32) (year, month, day, hour, minute, second int) {
	dosDate := uint16(v >> 16)
	dosTime := uint16(v)

	day = int(dosDate & 0x1f)
	month = int(dosDate >> 5 & 0xf)
	year = int(dosDate>>9) + 1980

	second = int(dosTime&0x1f) * 2
	minute = int(dosTime >> 5 & 0x3f)
	hour = int(dosTime >> 11)
	return
}

// DOSTimeFromUnix converts a Unix timestamp (seconds since epoch) into a packed MS-DOS date/time using
// the local time zone's broken-down representation (DOS timestamps are stored as local time), rounding
// the seconds field up to the next even value. It fails with InvalidValue if the result would fall
// outside [1980-01-01 00:00:00, 2107-12-31 23:59:58].
func DOSTimeFromUnix(unix int64) (uint32, error) {
	if unix&1 != 0 {
		unix++
	}

	t := time.Unix(unix, 0).Local()
	y := t.Year()
	if y < 1980 || y > 2107 {
		return 0, newErr(InvalidValue, "unix time out of DOS date/time range", nil)
	}

	return PackDOSTime(y, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// DOSTimeToUnix converts a packed MS-DOS date/time back into a Unix timestamp (seconds since epoch),
// reassembling the broken-down fields in the local time zone.
func DOSTimeToUnix(v uint32) int64 {
	return UnpackDOSTimeToTime(v).Unix()
}

// UnpackDOSTimeToTime converts a packed MS-DOS date/time into a time.Time in the local time zone. The
// resolution is 2s.
func UnpackDOSTimeToTime(v uint32) time.Time {
	year, month, day, hour, minute, second := UnpackDOSTime(v)
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
}

// PackTimeToDOSTime packs a time.Time directly, converting to local time first.
func PackTimeToDOSTime(t time.Time) (uint32, error) {
	t = t.Local()
	return PackDOSTime(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
