// Package time contains time related helpers
package time

import "time"

// isoZ is the second-precision UTC layout the web schema stores
const isoZ = "2006-01-02T15:04:05Z"

// ISOZ formats t in UTC as 2006-01-02T15:04:05Z
func ISOZ(t time.Time) string { return t.UTC().Format(isoZ) }
