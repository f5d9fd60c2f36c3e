package pattern

import (
	"regexp"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalidPattern reports a pattern that does not compile. The run is
// aborted before any file is dispatched.
var ErrInvalidPattern = errors.New("invalid pattern")

// Compile builds the match regexp from the user pattern. With
// useRegex=false the pattern is taken literally; word wraps it in \b
// anchors; ignoreCase compiles case-insensitively. useRegex and word are
// mutually exclusive at the CLI boundary, so no combination is rejected
// here.
func Compile(pat string, useRegex, ignoreCase, word bool) (*regexp.Regexp, error) {
	expr := pat
	if !useRegex {
		expr = regexp.QuoteMeta(pat)
	}
	if word {
		expr = `\b` + expr + `\b`
	}
	if ignoreCase {
		expr = `(?i)` + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("%w: %q: %w", ErrInvalidPattern, pat, err)
	}
	return re, nil
}
