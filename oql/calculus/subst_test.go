package calculus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oqlc/go-oql-compiler/oql"
)

func TestFreeVars(t *testing.T) {
	require := require.New(t)

	e := &Comp{
		M: &oql.SetMonoid{},
		Quals: []Qual{
			&Gen{P: &PatternIdn{Idn: "s"}, E: &IdnExp{Idn: "students"}},
			&Pred{E: &BinaryExp{Op: OpEq,
				Left:  &RecordProj{E: &IdnExp{Idn: "s"}, Idn: "age"},
				Right: &IdnExp{Idn: "limit"}}},
		},
		E: &IdnExp{Idn: "s"},
	}
	require.Equal([]string{"students", "limit"}, FreeVars(e))
}

func TestFreeVarsFunAbs(t *testing.T) {
	require := require.New(t)

	f := &FunAbs{
		P:    &PatternIdn{Idn: "x"},
		Body: &BinaryExp{Op: OpPlus, Left: &IdnExp{Idn: "x"}, Right: &IdnExp{Idn: "y"}},
	}
	require.Equal([]string{"y"}, FreeVars(f))
}

func TestSubstitute(t *testing.T) {
	require := require.New(t)

	body := &BinaryExp{Op: OpPlus, Left: &IdnExp{Idn: "x"}, Right: &IdnExp{Idn: "x"}}
	out := Substitute(body, "x", &IntConst{Value: 3}, nil)
	require.Equal("(3 + 3)", out.String())
}

func TestSubstituteStopsAtShadow(t *testing.T) {
	require := require.New(t)

	// the generator rebinds x, so the yield keeps referring to the binding
	e := &Comp{
		M: &oql.BagMonoid{},
		Quals: []Qual{
			&Gen{P: &PatternIdn{Idn: "x"}, E: &IdnExp{Idn: "x"}},
		},
		E: &IdnExp{Idn: "x"},
	}
	out := Substitute(e, "x", &IdnExp{Idn: "ys"}, nil)
	require.Equal("for (x <- ys) yield bag x", out.String())
}

func TestSubstituteAvoidsCapture(t *testing.T) {
	require := require.New(t)

	// substituting x := y into a function binding y must rename the binder
	fresh := 0
	rename := func(string) string {
		fresh++
		return "$r"
	}
	f := &FunAbs{
		P:    &PatternIdn{Idn: "y"},
		Body: &BinaryExp{Op: OpPlus, Left: &IdnExp{Idn: "x"}, Right: &IdnExp{Idn: "y"}},
	}
	out := Substitute(f, "x", &IdnExp{Idn: "y"}, rename)
	require.Equal(1, fresh)
	require.Equal(`\$r -> (y + $r)`, out.String())
}

func TestCloneDetaches(t *testing.T) {
	require := require.New(t)

	orig := &Comp{
		M: &oql.SetMonoid{},
		Quals: []Qual{
			&Gen{P: &PatternIdn{Idn: "s"}, E: &IdnExp{Idn: "students"}},
		},
		E: &IdnExp{Idn: "s"},
	}
	cp := Clone(orig).(*Comp)
	require.Equal(orig.String(), cp.String())
	require.NotSame(orig, cp)
	require.NotSame(orig.Quals[0], cp.Quals[0])
	require.NotSame(orig.E, cp.E)
}
