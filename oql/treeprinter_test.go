package oql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const expectedTree = `Reduce(set, $0, true)
 ├─ Join
 │   ├─ Scan(students)
 │   └─ Scan(professors)
 └─ Join
     ├─ Scan(courses)
     └─ Scan(rooms)
`

func TestTreePrinter(t *testing.T) {
	p := NewTreePrinter()
	p.WriteNode("Reduce(%s, %s, %s)", "set", "$0", "true")

	p2 := NewTreePrinter()
	p2.WriteNode("Join")
	p2.WriteChildren(
		"Scan(students)",
		"Scan(professors)",
	)

	p3 := NewTreePrinter()
	p3.WriteNode("Join")
	p3.WriteChildren(
		"Scan(courses)",
		"Scan(rooms)",
	)

	p.WriteChildren(
		p2.String(),
		p3.String(),
	)

	require.Equal(t, expectedTree, p.String())
}

func TestTreePrinterErrors(t *testing.T) {
	require := require.New(t)

	p := NewTreePrinter()
	require.Equal(ErrNodeNotWritten, p.WriteChildren("child"))
	require.NoError(p.WriteNode("node"))
	require.Equal(ErrNodeAlreadyWritten, p.WriteNode("node"))
	require.NoError(p.WriteChildren("child"))
	require.Equal(ErrChildrenAlreadyWritten, p.WriteChildren("child"))
}
