package command

import (
	"sort"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// maxTypoDistance bounds how far a misspelled kind may be from a recognized one.
const maxTypoDistance = 2

// Suggest returns the recognized kind closest to raw, if one is close enough to be useful.
// Abbreviations ("src" for set-source) are matched as subsequences, typos ("paly") by edit distance.
func Suggest(raw string) mo.Option[Kind] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return mo.None[Kind]()
	}

	kinds := Kinds()
	targets := lo.Map(kinds, func(k Kind, _ int) string { return string(k) })

	if ranks := fuzzy.RankFindFold(raw, targets); len(ranks) > 0 {
		sort.Sort(ranks)
		return mo.Some(kinds[ranks[0].OriginalIndex])
	}

	closest := lo.MinBy(targets, func(a, b string) bool {
		return levenshtein.Distance(strings.ToLower(raw), a) < levenshtein.Distance(strings.ToLower(raw), b)
	})
	if levenshtein.Distance(strings.ToLower(raw), closest) > maxTypoDistance {
		return mo.None[Kind]()
	}

	return mo.Some(Kind(closest))
}
