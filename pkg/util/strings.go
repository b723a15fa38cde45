package util

import (
    "strconv"
    "strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
    if s == "" {
        return def
    }
    v, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return v
}

// NormalizeSymbol trims and upper-cases a ticker. Returns "" for blank input.
func NormalizeSymbol(s string) string {
    return strings.ToUpper(strings.TrimSpace(s))
}

// SplitList splits a comma separated env value, dropping empty items.
func SplitList(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
