package calculus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oqlc/go-oql-compiler/oql"
)

func TestExpStrings(t *testing.T) {
	testCases := []struct {
		e        Exp
		expected string
	}{
		{&IntConst{Value: 42}, "42"},
		{&StringConst{Value: "x"}, `"x"`},
		{&BoolConst{Value: true}, "true"},
		{&Null{}, "null"},
		{&RecordProj{E: &IdnExp{Idn: "s"}, Idn: "age"}, "s.age"},
		{
			&BinaryExp{Op: OpGt, Left: &RecordProj{E: &IdnExp{Idn: "s"}, Idn: "age"}, Right: &IntConst{Value: 20}},
			"(s.age > 20)",
		},
		{
			&UnaryExp{Op: OpToBag, E: &IdnExp{Idn: "xs"}},
			"to_bag(xs)",
		},
		{
			&RecordCons{Atts: []AttrCons{
				{Idn: "name", E: &IdnExp{Idn: "n"}},
				{Idn: "age", E: &IdnExp{Idn: "a"}},
			}},
			"(name: n, age: a)",
		},
		{
			&Comp{
				M: &oql.SetMonoid{},
				Quals: []Qual{
					&Gen{P: &PatternIdn{Idn: "s"}, E: &IdnExp{Idn: "students"}},
					&Pred{E: &BinaryExp{Op: OpGt, Left: &RecordProj{E: &IdnExp{Idn: "s"}, Idn: "age"}, Right: &IntConst{Value: 20}}},
				},
				E: &IdnExp{Idn: "s"},
			},
			"for (s <- students; (s.age > 20)) yield set s",
		},
		{
			&In{Left: &StringConst{Value: "X"}, Right: &RecordProj{E: &IdnExp{Idn: "p"}, Idn: "authors"}},
			`("X" in p.authors)`,
		},
		{
			&InnerPath{P: &VariablePath{Idn: "p"}, Field: "authors"},
			"p.authors",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.e.String())
		})
	}
}

func TestSelectString(t *testing.T) {
	require := require.New(t)

	sel := &Select{
		From: []*Gen{
			{P: &PatternIdn{Idn: "s"}, E: &IdnExp{Idn: "students"}},
		},
		Proj:    &RecordProj{E: &IdnExp{Idn: "s"}, Idn: "age"},
		GroupBy: &RecordProj{E: &IdnExp{Idn: "s"}, Idn: "age"},
	}
	require.Equal("select s.age from students s group by s.age", sel.String())

	sel.Distinct = true
	sel.Where = &BinaryExp{Op: OpGt, Left: &RecordProj{E: &IdnExp{Idn: "s"}, Idn: "age"}, Right: &IntConst{Value: 20}}
	require.Equal("select distinct s.age from students s where (s.age > 20) group by s.age", sel.String())
}

// printing is deterministic and stable across a clone
func TestStringStableUnderClone(t *testing.T) {
	require := require.New(t)

	e := &Comp{
		M: &oql.BagMonoid{},
		Quals: []Qual{
			&Gen{P: &PatternIdn{Idn: "x"}, E: &IdnExp{Idn: "xs"}},
			&Bind{P: &PatternIdn{Idn: "y"}, E: &RecordProj{E: &IdnExp{Idn: "x"}, Idn: "f"}},
			&Pred{E: &BinaryExp{Op: OpEq, Left: &IdnExp{Idn: "y"}, Right: &IntConst{Value: 1}}},
		},
		E: &IdnExp{Idn: "x"},
	}
	require.Equal(e.String(), Clone(e).String())
}
