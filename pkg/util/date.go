package util

import (
    "strconv"
    "time"
)

// feedLayouts covers relay output ("2006-01-02 15:04:05", UTC) and raw RSS pubDate values.
var feedLayouts = []string{
    time.RFC3339,
    time.RFC3339Nano,
    "2006-01-02 15:04:05",
    time.RFC1123Z,
    time.RFC1123,
    "Mon, 2 Jan 2006 15:04:05 -0700",
    "Mon, 2 Jan 2006 15:04:05 MST",
}

// ParseTime tries RFC3339, relay and RSS layouts, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    for _, layout := range feedLayouts {
        if t, err := time.Parse(layout, s); err == nil {
            return t, true
        }
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}

// ClockHM renders t as zero-padded "HH:MM" in loc, or "00:00" for the zero time.
func ClockHM(t time.Time, loc *time.Location) string {
    if t.IsZero() {
        return "00:00"
    }
    if loc != nil {
        t = t.In(loc)
    }
    return t.Format("15:04")
}

// ClockHMS renders t as "HH:MM:SS" in loc.
func ClockHMS(t time.Time, loc *time.Location) string {
    if loc != nil {
        t = t.In(loc)
    }
    return t.Format("15:04:05")
}
