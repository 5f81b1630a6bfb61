package autogen

import (
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"

	"prensa/constants"
)

var (
	// stripPolicy removes every tag; used to count the words a reader
	// actually sees.
	stripPolicy = bluemonday.StrictPolicy()

	// contentPolicy keeps the markup an article body legitimately uses
	// and drops everything else before storage.
	contentPolicy = bluemonday.UGCPolicy()
)

// Slugify derives a URL slug from a title: lowercase, diacritics
// transliterated away, runs of non-alphanumerics collapsed to single
// hyphens, no leading or trailing hyphen.
func Slugify(title string) string {
	return slug.Make(title)
}

// SlugWithTimestamp appends the generation instant in unix milliseconds so
// repeated runs on the same topic never collide.
func SlugWithTimestamp(title string, now time.Time) string {
	return Slugify(title) + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// ReadingTime estimates minutes to read HTML content, at 200 words per
// minute, rounded up, never below one minute.
func ReadingTime(htmlContent string) int {
	text := stripPolicy.Sanitize(htmlContent)
	words := len(strings.Fields(text))
	minutes := (words + constants.WORDS_PER_MINUTE - 1) / constants.WORDS_PER_MINUTE
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// SanitizeContent cleans article HTML before it is stored and later served.
func SanitizeContent(htmlContent string) string {
	return strings.TrimSpace(contentPolicy.Sanitize(htmlContent))
}
