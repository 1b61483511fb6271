package symtab

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/maruel/natural"
	"golang.org/x/exp/slices"
)

var ErrDuplicateInScope = errors.New("duplicate declaration in scope")

// Global is the scope that is active before any block is entered.
const Global = 0

type key struct {
	scope int
	name  string
}

// Table holds one record per (scope, name) pair. Scopes form a chain
// through their parents, and lookups walk that chain outwards.
type Table struct {
	records map[key]*Symbol
	scopes  map[string][]int
	order   []*Symbol
	parent  map[int]int
	active  []int
	next    int
}

func New() *Table {
	return &Table{
		records: make(map[key]*Symbol),
		scopes:  make(map[string][]int),
		parent:  make(map[int]int),
		active:  []int{Global},
		next:    Global + 1,
	}
}

// Enter opens a new block scope nested in the current one and returns its id.
func (t *Table) Enter() int {
	id := t.next
	t.next++
	t.parent[id] = t.Current()
	t.active = append(t.active, id)
	return id
}

// Exit closes the current block scope. The global scope is never closed.
func (t *Table) Exit() {
	if len(t.active) > 1 {
		t.active = t.active[:len(t.active)-1]
	}
}

func (t *Table) Current() int {
	return t.active[len(t.active)-1]
}

// Declare adds sym to the current scope. A name may appear only once per
// scope; declaring it in another scope creates a separate record.
func (t *Table) Declare(sym *Symbol) error {
	scope := t.Current()
	k := key{scope: scope, name: sym.Name}

	if _, ok := t.records[k]; ok {
		return fmt.Errorf("%w: '%s' in scope %d", ErrDuplicateInScope, sym.Name, scope)
	}

	sym.Scope = scope
	if sym.Label == "" {
		if len(t.scopes[sym.Name]) == 0 {
			sym.Label = sym.Name
		} else {
			sym.Label = fmt.Sprintf("%s@%d", sym.Name, scope)
		}
	}

	t.records[k] = sym
	t.scopes[sym.Name] = append(t.scopes[sym.Name], scope)
	t.order = append(t.order, sym)

	return nil
}

// Truncate drops every record declared after the first n, newest first.
func (t *Table) Truncate(n int) {
	for len(t.order) > n {
		sym := t.order[len(t.order)-1]
		t.order = t.order[:len(t.order)-1]

		delete(t.records, key{scope: sym.Scope, name: sym.Name})
		scopes := t.scopes[sym.Name]
		if len(scopes) <= 1 {
			delete(t.scopes, sym.Name)
		} else {
			t.scopes[sym.Name] = scopes[:len(scopes)-1]
		}
	}
}

// Lookup returns the innermost binding of name visible from the current scope.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for i := len(t.active) - 1; i >= 0; i-- {
		if sym, ok := t.records[key{scope: t.active[i], name: name}]; ok {
			return sym, true
		}
	}
	return nil, false
}

// IsVisible reports whether name is declared in scope or one of the
// scopes enclosing it.
func (t *Table) IsVisible(name string, scope int) bool {
	for {
		if _, ok := t.records[key{scope: scope, name: name}]; ok {
			return true
		}
		parent, ok := t.parent[scope]
		if !ok {
			return false
		}
		scope = parent
	}
}

// Scopes returns the ids of the scopes name was declared in, in
// declaration order.
func (t *Table) Scopes(name string) []int {
	return slices.Clone(t.scopes[name])
}

// Symbols returns every record in declaration order.
func (t *Table) Symbols() []*Symbol {
	return t.order
}

func (t *Table) Len() int {
	return len(t.order)
}

// WriteTo dumps the table ordered by scope then name. Names compare in
// natural order so that _t2 comes before _t10.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	syms := slices.Clone(t.order)
	slices.SortStableFunc(syms, func(a, b *Symbol) int {
		if c := cmp.Compare(a.Scope, b.Scope); c != 0 {
			return c
		}
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return 0
	})

	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "SCOPE\tNAME\tLABEL\tCLASS\tTYPE\tLINE")
	for _, s := range syms {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", s.Scope, s.Name, s.Label, s.Class, s.Type, s.Pos.Line)
	}

	if err := tw.Flush(); err != nil {
		return cw.n, fmt.Errorf("error writing symbol table: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
