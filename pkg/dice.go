package pkg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// <count>d<sides>[kh|kl|dh|dl<n>] or a bare modifier, always sign-prefixed
var termRegex = regexp.MustCompile(`^([+-])(?:(\d*)d(\d+)(?:(kh|kl|dh|dl)(\d+))?|(\d+))$`)

// SyntaxError reports a notation string that does not match the dice grammar.
type SyntaxError struct {
	Token  string
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return "invalid dice notation: " + e.Reason
	}
	return fmt.Sprintf("invalid dice notation: %q %s", e.Token, e.Reason)
}

// SelectorKind says which dice in a pool count toward the subtotal.
type SelectorKind int

const (
	SelectNone SelectorKind = iota
	KeepHighest
	KeepLowest
	DropHighest
	DropLowest
)

func (k SelectorKind) String() string {
	switch k {
	case KeepHighest:
		return "kh"
	case KeepLowest:
		return "kl"
	case DropHighest:
		return "dh"
	case DropLowest:
		return "dl"
	default:
		return ""
	}
}

// Term is a single element of a dice expression: either a pool of dice or a
// flat modifier.
type Term interface {
	term()
}

// DiceTerm rolls Count dice with Sides faces, optionally keeping or dropping
// N of them.
type DiceTerm struct {
	Count  int
	Sides  int
	Select SelectorKind
	N      int
}

func (DiceTerm) term() {}

// ModifierTerm adds a signed flat value to the total.
type ModifierTerm struct {
	Value int
}

func (ModifierTerm) term() {}

// Expression is a parsed dice notation: terms in source order plus the
// advantage/disadvantage flags.
type Expression struct {
	Raw          string
	Terms        []Term
	Advantage    bool
	Disadvantage bool
}

func (e Expression) String() string {
	var builder strings.Builder
	for i, term := range e.Terms {
		switch t := term.(type) {
		case DiceTerm:
			if i > 0 {
				builder.WriteByte('+')
			}
			fmt.Fprintf(&builder, "%dd%d", t.Count, t.Sides)
			if t.Select != SelectNone {
				fmt.Fprintf(&builder, "%s%d", t.Select, t.N)
			}
		case ModifierTerm:
			fmt.Fprintf(&builder, "%+d", t.Value)
		}
	}
	if e.Advantage {
		builder.WriteString(" adv")
	}
	if e.Disadvantage {
		builder.WriteString(" dis")
	}
	return builder.String()
}

// Parse turns a dice notation string like "4d6kh3" or "1d20+5 adv" into an
// Expression. Whitespace between terms is insignificant; trailing adv/dis
// tokens set the expression flags. All failures are *SyntaxError.
func Parse(notation string) (Expression, error) {
	expr := Expression{Raw: notation}

	tokens := strings.Fields(strings.ToLower(notation))
flags:
	for len(tokens) > 0 {
		switch tokens[len(tokens)-1] {
		case "adv", "advantage":
			expr.Advantage = true
		case "dis", "disadvantage":
			expr.Disadvantage = true
		default:
			break flags
		}
		tokens = tokens[:len(tokens)-1]
	}
	if expr.Advantage && expr.Disadvantage {
		return Expression{}, &SyntaxError{Reason: "cannot roll with both advantage and disadvantage"}
	}

	joined := strings.Join(tokens, "")
	if joined == "" {
		return Expression{}, &SyntaxError{Reason: "expression has no terms"}
	}
	if joined[0] != '+' && joined[0] != '-' {
		joined = "+" + joined
	}

	for _, run := range splitRuns(joined) {
		term, err := parseTerm(run)
		if err != nil {
			return Expression{}, err
		}
		expr.Terms = append(expr.Terms, term)
	}
	return expr, nil
}

// splitRuns splits a sign-prefixed string into runs, each beginning with '+'
// or '-'. The input always starts with a sign, so no run is empty.
func splitRuns(joined string) []string {
	var runs []string
	start := 0
	for i := 1; i < len(joined); i++ {
		if joined[i] == '+' || joined[i] == '-' {
			runs = append(runs, joined[start:i])
			start = i
		}
	}
	return append(runs, joined[start:])
}

func parseTerm(run string) (Term, error) {
	matches := termRegex.FindStringSubmatch(run)
	if matches == nil {
		return nil, &SyntaxError{Token: run, Reason: "is not a dice or modifier term"}
	}

	if matches[6] != "" {
		value, err := strconv.Atoi(matches[6])
		if err != nil {
			return nil, &SyntaxError{Token: run, Reason: "modifier is out of range"}
		}
		if matches[1] == "-" {
			value = -value
		}
		return ModifierTerm{Value: value}, nil
	}

	if matches[1] == "-" {
		return nil, &SyntaxError{Token: run, Reason: "dice pools cannot be negative"}
	}

	term := DiceTerm{Count: 1}
	var err error
	if matches[2] != "" {
		term.Count, err = strconv.Atoi(matches[2])
		if err != nil {
			return nil, &SyntaxError{Token: run, Reason: "dice count is out of range"}
		}
	}
	term.Sides, err = strconv.Atoi(matches[3])
	if err != nil {
		return nil, &SyntaxError{Token: run, Reason: "dice sides are out of range"}
	}
	if term.Count < 1 || term.Sides < 1 {
		return nil, &SyntaxError{Token: run, Reason: "dice must have positive sides and count"}
	}

	if matches[4] != "" {
		term.N, err = strconv.Atoi(matches[5])
		if err != nil {
			return nil, &SyntaxError{Token: run, Reason: "selector count is out of range"}
		}
		switch matches[4] {
		case "kh":
			term.Select = KeepHighest
		case "kl":
			term.Select = KeepLowest
		case "dh":
			term.Select = DropHighest
		case "dl":
			term.Select = DropLowest
		}
	}
	return term, nil
}
