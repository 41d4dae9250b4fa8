package assets

import (
	"fmt"
	"regexp/syntax"
	"slices"
	"strings"
)

// maxExpansions bounds the number of strings a rule test may match.
const maxExpansions = 64

// extensions expands a rule test such as `\.(png|jpe?g)$` into the file extensions it
// matches. Only finite patterns ending in an extension are accepted.
func extensions(test string) ([]string, error) {
	re, err := syntax.Parse(test, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("%w: rule test %q: %w", ErrInvalidConfig, test, err)
	}

	words, ok := expand(re.Simplify())
	if !ok || len(words) == 0 {
		return nil, fmt.Errorf("%w: rule test %q does not match a finite set of extensions", ErrInvalidConfig, test)
	}

	exts := make([]string, 0, len(words))
	for _, w := range words {
		if !strings.HasPrefix(w, ".") || len(w) < 2 || strings.Contains(w[1:], "/") {
			return nil, fmt.Errorf("%w: rule test %q matches %q which is not an extension", ErrInvalidConfig, test, w)
		}
		exts = append(exts, w)
	}

	slices.Sort(exts)
	return slices.Compact(exts), nil
}

func expand(re *syntax.Regexp) ([]string, bool) {
	switch re.Op {
	case syntax.OpEmptyMatch, syntax.OpBeginText, syntax.OpEndText, syntax.OpBeginLine, syntax.OpEndLine:
		return []string{""}, true
	case syntax.OpLiteral:
		return []string{string(re.Rune)}, true
	case syntax.OpCharClass:
		var out []string
		for i := 0; i+1 < len(re.Rune); i += 2 {
			for r := re.Rune[i]; r <= re.Rune[i+1]; r++ {
				out = append(out, string(r))
				if len(out) > maxExpansions {
					return nil, false
				}
			}
		}
		return out, true
	case syntax.OpCapture:
		return expand(re.Sub[0])
	case syntax.OpQuest:
		sub, ok := expand(re.Sub[0])
		if !ok {
			return nil, false
		}
		return append([]string{""}, sub...), true
	case syntax.OpAlternate:
		var out []string
		for _, s := range re.Sub {
			sub, ok := expand(s)
			if !ok {
				return nil, false
			}
			out = append(out, sub...)
			if len(out) > maxExpansions {
				return nil, false
			}
		}
		return out, true
	case syntax.OpConcat:
		out := []string{""}
		for _, s := range re.Sub {
			sub, ok := expand(s)
			if !ok {
				return nil, false
			}
			next := make([]string, 0, len(out)*len(sub))
			for _, prefix := range out {
				for _, suffix := range sub {
					next = append(next, prefix+suffix)
				}
			}
			if len(next) > maxExpansions {
				return nil, false
			}
			out = next
		}
		return out, true
	}

	return nil, false
}
