package generator

import (
	"math/rand/v2"

	"github.com/nugget/credo-bot/internal/credo"
)

// fallbackLeads open the first template line.
var fallbackLeads = []string{"今日は", "改めて", "日々", ""}

const fallbackStream = 0x66616c6c // "fall"

// Fallback builds a two-line body from entry's own example sentences: a
// lead word and one variant, then the next variant. Every pair in the
// built-in catalog lands inside the default length policy, so the text is
// not re-validated. The same seed always yields the same text.
func Fallback(entry credo.Entry, seed uint64) string {
	r := rand.New(rand.NewPCG(seed, fallbackStream))
	lead := fallbackLeads[r.IntN(len(fallbackLeads))]
	return compose(lead, entry, r.IntN(len(entry.Variants)))
}

func compose(lead string, entry credo.Entry, i int) string {
	n := len(entry.Variants)
	return lead + entry.Variants[i%n] + "\n" + entry.Variants[(i+1)%n]
}
