package pkg

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// Source draws a single die. Implementations must return a uniform value in
// [1, sides] and be safe for concurrent use.
type Source interface {
	Roll(sides int) int
}

type randSource struct{}

func (randSource) Roll(sides int) int {
	return rand.IntN(sides) + 1
}

// DefaultSource draws from the shared process-wide generator.
var DefaultSource Source = randSource{}

type seededSource struct {
	rng *rand.Rand
}

func (s seededSource) Roll(sides int) int {
	return s.rng.IntN(sides) + 1
}

// Seeded returns a Source producing a reproducible sequence of draws. Unlike
// DefaultSource it is not safe for concurrent use.
func Seeded(seed uint64) Source {
	return seededSource{rng: rand.New(rand.NewPCG(seed, seed))}
}

// ResultKind discriminates the three shapes of term contribution.
type ResultKind int

const (
	DiceResult ResultKind = iota
	ModifierResult
	AdvantageResult
)

func (k ResultKind) String() string {
	switch k {
	case DiceResult:
		return "dice"
	case ModifierResult:
		return "modifier"
	case AdvantageResult:
		return "advantage"
	default:
		return "unknown"
	}
}

// TermResult records how one term contributed to the total.
//
// For DiceResult, Rolls holds every die in draw order and Used holds the
// indices into Rolls that counted toward Subtotal; dice not in Used were
// dropped by a selector. For AdvantageResult, Base is the informational
// first draw and Pair holds the two fresh d20 draws the Subtotal was chosen
// from. For ModifierResult, Subtotal is the signed modifier itself.
type TermResult struct {
	Kind     ResultKind `msgpack:"kind" json:"kind"`
	Rolls    []int      `msgpack:"rolls,omitempty" json:"rolls,omitempty"`
	Used     []int      `msgpack:"used,omitempty" json:"used,omitempty"`
	Base     int        `msgpack:"base,omitempty" json:"base,omitempty"`
	Pair     [2]int     `msgpack:"pair,omitempty" json:"pair,omitempty"`
	Subtotal int        `msgpack:"subtotal" json:"subtotal"`
}

func (tr TermResult) String() string {
	switch tr.Kind {
	case ModifierResult:
		return fmt.Sprintf("%+d", tr.Subtotal)
	case AdvantageResult:
		return fmt.Sprintf("base %d, pair (%d %d) = %d", tr.Base, tr.Pair[0], tr.Pair[1], tr.Subtotal)
	default:
		used := make(map[int]bool, len(tr.Used))
		for _, idx := range tr.Used {
			used[idx] = true
		}
		parts := make([]string, len(tr.Rolls))
		for idx, value := range tr.Rolls {
			if used[idx] {
				parts[idx] = fmt.Sprintf("%d", value)
			} else {
				parts[idx] = fmt.Sprintf("(%d)", value)
			}
		}
		return fmt.Sprintf("[%s] = %d", strings.Join(parts, " "), tr.Subtotal)
	}
}

// Result is the full audit trail for one evaluated expression.
type Result struct {
	Notation string       `msgpack:"notation" json:"notation"`
	Total    int          `msgpack:"total" json:"total"`
	Terms    []TermResult `msgpack:"terms" json:"terms"`
}

func (r Result) String() string {
	return fmt.Sprintf("%s = %d", r.Notation, r.Total)
}

// Resolve rolls a parsed expression. Terms are evaluated in source order and
// the detail records come back in that same order. A nil src falls back to
// DefaultSource.
func Resolve(expr Expression, src Source) Result {
	if src == nil {
		src = DefaultSource
	}
	result := Result{
		Notation: expr.Raw,
		Terms:    make([]TermResult, 0, len(expr.Terms)),
	}
	for _, term := range expr.Terms {
		var tr TermResult
		switch t := term.(type) {
		case ModifierTerm:
			tr = TermResult{Kind: ModifierResult, Subtotal: t.Value}
		case DiceTerm:
			if t.Count == 1 && t.Sides == 20 && t.Select == SelectNone && (expr.Advantage || expr.Disadvantage) {
				tr = rollEdge(expr.Advantage, src)
			} else {
				tr = rollPool(t, src)
			}
		}
		result.Terms = append(result.Terms, tr)
		result.Total += tr.Subtotal
	}
	return result
}

// rollEdge handles a lone d20 under advantage or disadvantage. The base die
// is drawn first and recorded for display only; the term value is the max
// (or min) of a fresh pair. The base draw never counts toward the total.
func rollEdge(advantage bool, src Source) TermResult {
	base := src.Roll(20)
	a, b := src.Roll(20), src.Roll(20)
	value := max(a, b)
	if !advantage {
		value = min(a, b)
	}
	return TermResult{
		Kind:     AdvantageResult,
		Base:     base,
		Pair:     [2]int{a, b},
		Subtotal: value,
	}
}

func rollPool(term DiceTerm, src Source) TermResult {
	rolls := make([]int, term.Count)
	for i := range rolls {
		rolls[i] = src.Roll(term.Sides)
	}
	used := usedIndices(rolls, term.Select, term.N)
	subtotal := 0
	for _, idx := range used {
		subtotal += rolls[idx]
	}
	return TermResult{
		Kind:     DiceResult,
		Rolls:    rolls,
		Used:     used,
		Subtotal: subtotal,
	}
}

// usedIndices applies a keep/drop selector to a pool. Dice are ranked by
// value descending with ties going to the earlier draw. Keep-highest reports
// indices in ranked order; keep-lowest restores draw order; both drop forms
// leave the survivors in draw order. A selector count beyond the pool size
// clamps to the pool.
func usedIndices(rolls []int, selector SelectorKind, n int) []int {
	count := len(rolls)
	if selector == SelectNone {
		used := make([]int, count)
		for i := range used {
			used[i] = i
		}
		return used
	}

	ranked := make([]int, count)
	for i := range ranked {
		ranked[i] = i
	}
	slices.SortStableFunc(ranked, func(a, b int) int {
		return cmp.Compare(rolls[b], rolls[a])
	})
	n = min(n, count)

	switch selector {
	case KeepHighest:
		return ranked[:n]
	case KeepLowest:
		kept := slices.Clone(ranked[count-n:])
		slices.Sort(kept)
		return kept
	case DropHighest:
		return survivors(count, ranked[:n])
	case DropLowest:
		return survivors(count, ranked[count-n:])
	}
	return nil
}

// survivors returns all indices not in dropped, in draw order.
func survivors(count int, dropped []int) []int {
	drop := make(map[int]bool, len(dropped))
	for _, idx := range dropped {
		drop[idx] = true
	}
	used := make([]int, 0, count-len(dropped))
	for i := 0; i < count; i++ {
		if !drop[i] {
			used = append(used, i)
		}
	}
	return used
}
