// Package normalize cleans user supplied text before it is stored
// Pipeline for Text and Line
// 1 drop NUL, control characters and invalid UTF-8
// 2 Unicode NFC
// 3 remove format characters such as zero-width joiners
// 4 collapse whitespace and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var textPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cf)))
	},
}

var emailPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFKC, width.Fold, runes.Remove(runes.In(unicode.Cf)))
	},
}

func apply(p *sync.Pool, s string) string {
	tr := p.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	p.Put(tr)
	if err != nil {
		return s
	}
	return out
}

// Text normalizes multi line input such as descriptions and messages
// whitespace runs holding a newline become one newline
func Text(s string) string {
	if s == "" {
		return ""
	}
	return collapse(apply(&textPool, sanitize(s)), true)
}

// Line normalizes single line input such as titles and display names
func Line(s string) string {
	if s == "" {
		return ""
	}
	return collapse(apply(&textPool, sanitize(s)), false)
}

// Email folds an address to the form used for uniqueness
func Email(s string) string {
	s = strings.TrimSpace(sanitize(s))
	if s == "" {
		return ""
	}
	return strings.ToLower(apply(&emailPool, s))
}

// Exceeds reports whether s holds more than n runes; it stops counting at n+1
func Exceeds(s string, n int) bool {
	if len(s) <= n {
		return false
	}
	i := 0
	for range s {
		if i == n {
			return true
		}
		i++
	}
	return false
}

// sanitize drops runes that never belong in stored text
func sanitize(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case r < 0x20, r == 0x7f, r >= 0x80 && r <= 0x9f:
			return -1
		}
		return r
	}, s)
}

func collapse(s string, keepNewlines bool) string {
	var b strings.Builder
	b.Grow(len(s))
	inWS, sawNL := false, false
	flush := func() {
		if !inWS {
			return
		}
		if sawNL && keepNewlines {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
		inWS, sawNL = false, false
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			if r == '\n' || r == '\r' {
				sawNL = true
			}
			continue
		}
		if b.Len() > 0 {
			flush()
		} else {
			inWS, sawNL = false, false
		}
		b.WriteRune(r)
	}
	return b.String()
}
