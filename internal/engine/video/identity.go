package video

import (
	"crypto/md5" //nolint:gosec // slug suffix, not a security boundary
	"fmt"
	"regexp"
	"strings"
)

var (
	nonAlnumRe  = regexp.MustCompile(`[^a-z0-9]+`)
	multiDashRe = regexp.MustCompile(`-{2,}`)
	slugRe      = regexp.MustCompile(`^[a-z0-9-]+-[0-9a-f]{4}$`)
)

// Slugify derives the directory identity for a video title: lowercase,
// every run of non-alphanumeric characters becomes a single hyphen,
// repeated hyphens collapse, edges are trimmed. An empty normalization
// falls back to "video". The first 4 hex chars of the MD5 of the
// original title are appended so titles that normalize identically
// still get distinct directories.
func Slugify(title string) string {
	base := nonAlnumRe.ReplaceAllString(strings.ToLower(title), "-")
	base = multiDashRe.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "video"
	}
	sum := md5.Sum([]byte(title)) //nolint:gosec // non-cryptographic use
	return fmt.Sprintf("%s-%x", base, sum[:2])
}

// ValidSlug reports whether s has the shape Slugify produces. Resource
// handlers use it to reject traversal attempts before touching disk.
func ValidSlug(s string) bool {
	return slugRe.MatchString(s)
}
