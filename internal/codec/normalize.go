package codec

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeRegion trims a user supplied region name and converts it to title
// case, the form region names take in the corpus ("navi mumbai" becomes
// "Navi Mumbai").
func NormalizeRegion(region string) string {
	// a Caser keeps state, so each call gets its own
	return cases.Title(language.Und).String(strings.TrimSpace(region))
}
