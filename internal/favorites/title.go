package favorites

import (
	"regexp"
	"strconv"
	"strings"
)

var trailingYear = regexp.MustCompile(`[\s(]([12]\d{3})\)?$`)

// SplitTitleYear separates a trailing year from title, as in "Show (2005)" or
// "Show 2005". The year is zero when none is found or when removing it would
// leave an empty title.
func SplitTitleYear(title string) (string, int) {
	title = strings.TrimSpace(title)
	loc := trailingYear.FindStringSubmatchIndex(title)
	if loc == nil {
		return title, 0
	}
	rest := strings.TrimSpace(title[:loc[0]])
	if rest == "" {
		return title, 0
	}
	year, err := strconv.Atoi(title[loc[2]:loc[3]])
	if err != nil {
		return title, 0
	}
	return rest, year
}
