package oql

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// TreePrinter prints tree nodes and their children with the right indent.
type TreePrinter struct {
	buf         bytes.Buffer
	nodeWritten bool
	written     bool
}

// NewTreePrinter creates a new tree printer.
func NewTreePrinter() *TreePrinter {
	return new(TreePrinter)
}

var (
	// ErrNodeAlreadyWritten is returned when the node has already been
	// written.
	ErrNodeAlreadyWritten = fmt.Errorf("treeprinter: node already written")
	// ErrNodeNotWritten is returned when the children are written before
	// the node.
	ErrNodeNotWritten = fmt.Errorf("treeprinter: cannot write children before the node")
	// ErrChildrenAlreadyWritten is returned when the children have already
	// been written.
	ErrChildrenAlreadyWritten = fmt.Errorf("treeprinter: children already written")
)

// WriteNode writes the main node.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) error {
	if p.nodeWritten {
		return ErrNodeAlreadyWritten
	}

	_, err := fmt.Fprintf(&p.buf, format, args...)
	if err != nil {
		return err
	}
	_, err = p.buf.WriteRune('\n')
	if err != nil {
		return err
	}

	p.nodeWritten = true
	return nil
}

// WriteChildren writes a children of the tree.
func (p *TreePrinter) WriteChildren(children ...string) error {
	if !p.nodeWritten {
		return ErrNodeNotWritten
	}

	if p.written {
		return ErrChildrenAlreadyWritten
	}
	p.written = true

	for i, child := range children {
		last := i+1 == len(children)
		r := childReader(child)
		var first = true
		for {
			line, err := r.ReadString('\n')
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}

			line = strings.TrimRight(line, "\n")
			if first {
				if last {
					p.buf.WriteString(" └─ ")
				} else {
					p.buf.WriteString(" ├─ ")
				}
				first = false
			} else {
				if last {
					p.buf.WriteString("    ")
				} else {
					p.buf.WriteString(" │  ")
				}
			}
			p.buf.WriteString(line)
			p.buf.WriteRune('\n')
		}
	}
	return nil
}

func childReader(s string) *bufio.Reader {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return bufio.NewReader(strings.NewReader(s))
}

// String returns the output of the printed tree.
func (p *TreePrinter) String() string {
	return p.buf.String()
}
