// Package normalize cleans shared link text before it is classified, hashed and stored.
// Pipeline order
// 1 Sanitize: drop invalid UTF-8 and control characters, tabs and line breaks become spaces
// 2 Unicode NFKC normalization
// 3 Remove format characters (zero-width space and joiners, BOM, direction marks)
// 4 Width fold fullwidth forms to ASCII
// 5 Trim surrounding whitespace
//
// Case is preserved: platform ids such as YouTube video ids are case sensitive
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

// pool of fresh transformer chains; a chain carries state and is not safe to share
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// URL returns the normalized form of a shared link. Total: never fails,
// worst case returns the sanitized, trimmed input
func URL(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = s
	}
	return strings.TrimSpace(ns)
}
