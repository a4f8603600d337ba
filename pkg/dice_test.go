package pkg

import (
	"errors"
	"testing"

	"github.com/shoenig/test/must"
)

func TestParse(t *testing.T) {
	cases := []struct {
		notation string
		want     Expression
	}{
		{
			notation: "1d20",
			want:     Expression{Terms: []Term{DiceTerm{Count: 1, Sides: 20}}},
		},
		{
			notation: "d8",
			want:     Expression{Terms: []Term{DiceTerm{Count: 1, Sides: 8}}},
		},
		{
			notation: "4d6kh3",
			want:     Expression{Terms: []Term{DiceTerm{Count: 4, Sides: 6, Select: KeepHighest, N: 3}}},
		},
		{
			notation: "4d6kl2",
			want:     Expression{Terms: []Term{DiceTerm{Count: 4, Sides: 6, Select: KeepLowest, N: 2}}},
		},
		{
			notation: "3d6dh2",
			want:     Expression{Terms: []Term{DiceTerm{Count: 3, Sides: 6, Select: DropHighest, N: 2}}},
		},
		{
			notation: "2d20dl1",
			want:     Expression{Terms: []Term{DiceTerm{Count: 2, Sides: 20, Select: DropLowest, N: 1}}},
		},
		{
			notation: "1d20+5",
			want: Expression{Terms: []Term{
				DiceTerm{Count: 1, Sides: 20},
				ModifierTerm{Value: 5},
			}},
		},
		{
			notation: "1d20 + 5",
			want: Expression{Terms: []Term{
				DiceTerm{Count: 1, Sides: 20},
				ModifierTerm{Value: 5},
			}},
		},
		{
			notation: "2d6+1d4+3",
			want: Expression{Terms: []Term{
				DiceTerm{Count: 2, Sides: 6},
				DiceTerm{Count: 1, Sides: 4},
				ModifierTerm{Value: 3},
			}},
		},
		{
			notation: "1d8-2",
			want: Expression{Terms: []Term{
				DiceTerm{Count: 1, Sides: 8},
				ModifierTerm{Value: -2},
			}},
		},
		{
			notation: "+3",
			want:     Expression{Terms: []Term{ModifierTerm{Value: 3}}},
		},
		{
			notation: "-3",
			want:     Expression{Terms: []Term{ModifierTerm{Value: -3}}},
		},
		{
			notation: "4D6KH3",
			want:     Expression{Terms: []Term{DiceTerm{Count: 4, Sides: 6, Select: KeepHighest, N: 3}}},
		},
		{
			notation: "1d20+5 adv",
			want: Expression{
				Terms: []Term{
					DiceTerm{Count: 1, Sides: 20},
					ModifierTerm{Value: 5},
				},
				Advantage: true,
			},
		},
		{
			notation: "1d20 advantage",
			want: Expression{
				Terms:     []Term{DiceTerm{Count: 1, Sides: 20}},
				Advantage: true,
			},
		},
		{
			notation: "1d20 dis",
			want: Expression{
				Terms:        []Term{DiceTerm{Count: 1, Sides: 20}},
				Disadvantage: true,
			},
		},
		{
			// the flag is recorded even when resolution will ignore it
			notation: "1d6 adv",
			want: Expression{
				Terms:     []Term{DiceTerm{Count: 1, Sides: 6}},
				Advantage: true,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.notation, func(t *testing.T) {
			tc.want.Raw = tc.notation
			got, err := Parse(tc.notation)
			must.NoError(t, err)
			must.Eq(t, tc.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"adv",
		"adv dis",
		"1d",
		"d",
		"-1d6",
		"1d20 adv dis",
		"cantaloupe",
		"4d6kh",
		"4d6kh3dl1",
		"0d6",
		"1d0",
		"1d20++5",
		"1d20+",
	}
	for _, notation := range cases {
		t.Run(notation, func(t *testing.T) {
			_, err := Parse(notation)
			must.Error(t, err)
			var syntaxErr *SyntaxError
			must.True(t, errors.As(err, &syntaxErr))
		})
	}
}

func TestParse_OffendingToken(t *testing.T) {
	_, err := Parse("1d20+bogus")
	must.Error(t, err)
	var syntaxErr *SyntaxError
	must.True(t, errors.As(err, &syntaxErr))
	must.EqOp(t, "+bogus", syntaxErr.Token)

	_, err = Parse("-1d6")
	must.Error(t, err)
	must.True(t, errors.As(err, &syntaxErr))
	must.EqOp(t, "-1d6", syntaxErr.Token)
	must.StrContains(t, err.Error(), "cannot be negative")
}

func TestParse_Deterministic(t *testing.T) {
	first, err := Parse("4d6kh3+2d10dl1+5 adv")
	must.NoError(t, err)
	second, err := Parse("4d6kh3+2d10dl1+5 adv")
	must.NoError(t, err)
	must.Eq(t, first, second)
}

func TestExpressionString(t *testing.T) {
	expr, err := Parse("4d6KH3 + 2 - 1 ADV")
	must.NoError(t, err)
	must.EqOp(t, "4d6kh3+2-1 adv", expr.String())

	again, err := Parse(expr.String())
	must.NoError(t, err)
	must.Eq(t, expr.Terms, again.Terms)
	must.True(t, again.Advantage)
}
