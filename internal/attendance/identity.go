package attendance

import (
	"regexp"
	"strings"
)

// IdentityStrategy names how student keys were derived for one file.
// The strategy is chosen once per file and applied to every row in it.
type IdentityStrategy string

const (
	// StrategyEmail uses the normalized email column only.
	StrategyEmail IdentityStrategy = "Email"
	// StrategyEmailNameFallback prefers email, falling back to the display
	// name for rows where the email cell is blank.
	StrategyEmailNameFallback IdentityStrategy = "Email (fallback to Name if blank)"
	// StrategyNameOnly uses the display name; the file has no email column.
	StrategyNameOnly IdentityStrategy = "Name (fallback; no Email column)"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanName returns a cleaned display name: trimmed, internal whitespace
// runs collapsed to single spaces. Empty string when nothing usable.
func CleanName(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ""
	}
	return whitespaceRun.ReplaceAllString(s, " ")
}

// NormalizeKey normalizes an identifier (email or name) for matching:
// trim, lower-case, collapse internal whitespace. Blank cells and the
// literal placeholders some exporters emit ("nan", "none") normalize to "".
func NormalizeKey(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" || s == "nan" || s == "none" {
		return ""
	}
	return whitespaceRun.ReplaceAllString(s, " ")
}

// chooseStrategy picks the per-file identity strategy from the file's
// detected columns and the fallback policy. hasEmail is whether the file
// carries any email column at all.
func chooseStrategy(hasEmail, allowNameFallback bool) (IdentityStrategy, bool) {
	switch {
	case hasEmail && allowNameFallback:
		return StrategyEmailNameFallback, true
	case hasEmail:
		return StrategyEmail, true
	case allowNameFallback:
		return StrategyNameOnly, true
	default:
		// No email column and no fallback: the file cannot be identified.
		return "", false
	}
}

// resolveKey derives the student key for one row under the given strategy.
// Returns "" when the row has no usable identifier.
func resolveKey(strategy IdentityStrategy, email, displayName string) string {
	switch strategy {
	case StrategyEmail:
		return NormalizeKey(email)
	case StrategyEmailNameFallback:
		if key := NormalizeKey(email); key != "" {
			return key
		}
		return NormalizeKey(displayName)
	case StrategyNameOnly:
		return NormalizeKey(displayName)
	default:
		return ""
	}
}
