package candid

import (
	"strconv"
	"strings"
)

// valuePath locates a value inside a message. Each node points at its
// parent, so descending one level allocates one node; the element slice is
// only built when an error or log entry asks for it.
type valuePath struct {
	parent *valuePath
	elem   string
}

func argPath(i int) *valuePath {
	return &valuePath{elem: "arg[" + strconv.Itoa(i) + "]"}
}

func (p *valuePath) child(elem string) *valuePath {
	return &valuePath{parent: p, elem: elem}
}

func (p *valuePath) index(i int) *valuePath {
	return p.child("[" + strconv.Itoa(i) + "]")
}

// slice returns the elements from the argument down. A nil path is empty.
func (p *valuePath) slice() []string {
	n := 0
	for q := p; q != nil; q = q.parent {
		n++
	}
	if n == 0 {
		return nil
	}
	out := make([]string, n)
	for q := p; q != nil; q = q.parent {
		n--
		out[n] = q.elem
	}
	return out
}

func (p *valuePath) String() string {
	return strings.Join(p.slice(), ".")
}
