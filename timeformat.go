package marshmallow

import "time"

// Named datetime formats accepted by DateTime/LocalDateTime fields and the
// schema-level DateFormat option. Anything else is treated as an explicit Go
// time layout.
const (
	FormatRFC = "rfc"
	FormatISO = "iso"
)

// rfc822Layout renders the RFC 2822 date format. The "-0000" suffix is
// literal: UTC rendering uses it to signal an unknown local zone, matching
// the wire contract for non-local datetimes.
const (
	rfc822Layout      = "Mon, 02 Jan 2006 15:04:05 -0000"
	rfc822LocalLayout = "Mon, 02 Jan 2006 15:04:05 -0700"
	isoLayout         = "2006-01-02T15:04:05"
	isoLocalLayout    = "2006-01-02T15:04:05-07:00"
)

// rfcFormat renders t in RFC 2822 form, in UTC or the local zone.
func rfcFormat(t time.Time, local bool) string {
	if local {
		return t.Local().Format(rfc822LocalLayout)
	}
	return t.UTC().Format(rfc822Layout)
}

// isoFormat renders t in ISO 8601 form, in UTC or the local zone.
func isoFormat(t time.Time, local bool) string {
	if local {
		return t.Local().Format(isoLocalLayout)
	}
	return t.UTC().Format(isoLayout)
}

// formatDateTime applies the resolved format name or layout to t.
func formatDateTime(t time.Time, format string, local bool) string {
	switch format {
	case "", FormatRFC:
		return rfcFormat(t, local)
	case FormatISO:
		return isoFormat(t, local)
	default:
		if local {
			return t.Local().Format(format)
		}
		return t.Format(format)
	}
}

// isoDate renders the date portion of t.
func isoDate(t time.Time) string { return t.Format(time.DateOnly) }

// isoTime renders the time-of-day portion of t with millisecond precision
// when sub-second detail exists.
func isoTime(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format(time.TimeOnly)
	}
	s := t.Format("15:04:05.000000")
	// HH:MM:SS.mmm
	return s[:12]
}
