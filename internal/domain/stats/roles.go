package stats

import "strings"

// RoleBucket groups raw positions for matchup comparisons.
type RoleBucket string

const (
	BucketGuard         RoleBucket = "G"
	BucketGuardForward  RoleBucket = "GF"
	BucketForward       RoleBucket = "F"
	BucketForwardCenter RoleBucket = "FC"
	BucketCenter        RoleBucket = "C"
)

var roleLookup = map[string]RoleBucket{
	"G":   BucketGuard,
	"G-F": BucketGuardForward,
	"F-G": BucketGuardForward,
	"F":   BucketForward,
	"F-C": BucketForwardCenter,
	"C-F": BucketForwardCenter,
	"C":   BucketCenter,
}

// Buckets lists every role bucket.
func Buckets() []RoleBucket {
	return []RoleBucket{BucketGuard, BucketGuardForward, BucketForward, BucketForwardCenter, BucketCenter}
}

// MapRole maps a raw position string to its bucket. Unmapped positions return false.
func MapRole(position string) (RoleBucket, bool) {
	b, ok := roleLookup[strings.ToUpper(strings.TrimSpace(position))]
	return b, ok
}
