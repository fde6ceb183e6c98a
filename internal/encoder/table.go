// Package encoder builds OSMPBF blobs from model entities.
package encoder

import "sort"

// Strings collects the distinct strings referenced by a block before the
// table indexes are known.
type Strings struct {
	tbl map[string]struct{}
}

// Table is a frozen string table with stable indexes.
type Table struct {
	tbl     map[string]int32
	strings []string
}

func NewStrings() *Strings {
	return &Strings{
		tbl: make(map[string]struct{}),
	}
}

func (s *Strings) Add(value string) {
	s.tbl[value] = struct{}{}
}

// CalcTable freezes the collected strings into a Table.  Index 0 is used by
// dense nodes as a tag-list terminator, so the empty string is guaranteed
// to sort to index 0.
func (s *Strings) CalcTable() *Table {
	strings := make([]string, 0, len(s.tbl)+1)
	strings = append(strings, "")

	for k := range s.tbl {
		if k != "" {
			strings = append(strings, k)
		}
	}

	sort.Strings(strings)

	tbl := make(map[string]int32, len(strings))
	for i, k := range strings {
		tbl[k] = int32(i)
	}

	return &Table{
		tbl:     tbl,
		strings: strings,
	}
}

func (t *Table) IndexOf(value string) int32 {
	index, ok := t.tbl[value]
	if !ok {
		panic("index does not exist")
	}

	return index
}

func (t *Table) AsArray() []string {
	return t.strings
}
