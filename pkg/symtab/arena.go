package symtab

import (
	"fmt"

	"github.com/brenoafb/tinypascal/pkg/token"
)

// Arena names compiler-generated symbols for one compilation.
// Temporaries are _t0, _t1, ... and string data is _s0, _s1, ...
type Arena struct {
	temps    int
	strs     int
	literals map[string]*Symbol
	values   []string
}

// Checkpoint is the state of an Arena at some point of a compilation.
type Checkpoint struct {
	temps int
	strs  int
}

func NewArena() *Arena {
	return &Arena{literals: make(map[string]*Symbol)}
}

// Temp declares a fresh integer temporary in the current scope of t.
func (a *Arena) Temp(t *Table, pos token.Pos) *Symbol {
	sym := &Symbol{
		Name:      fmt.Sprintf("_t%d", a.temps),
		Type:      IntType,
		Class:     Scalar,
		Pos:       pos,
		Synthetic: true,
	}
	a.temps++

	if err := t.Declare(sym); err != nil {
		panic(fmt.Errorf("temporary name clash: %w", err))
	}
	return sym
}

// Literal returns the string data symbol holding value, declaring it in
// the current scope of t the first time value is seen.
func (a *Arena) Literal(t *Table, value string, pos token.Pos) *Symbol {
	if sym, ok := a.literals[value]; ok {
		return sym
	}

	v := value
	sym := &Symbol{
		Name:      fmt.Sprintf("_s%d", a.strs),
		Type:      StringType,
		Class:     Scalar,
		Pos:       pos,
		Literal:   &v,
		Synthetic: true,
	}
	a.strs++

	if err := t.Declare(sym); err != nil {
		panic(fmt.Errorf("string data name clash: %w", err))
	}
	a.literals[value] = sym
	a.values = append(a.values, value)
	return sym
}

func (a *Arena) Checkpoint() Checkpoint {
	return Checkpoint{temps: a.temps, strs: a.strs}
}

// Rewind forgets every name handed out after cp so the next ones are
// reused. The matching records must be dropped from the table with
// Table.Truncate.
func (a *Arena) Rewind(cp Checkpoint) {
	for _, v := range a.values[cp.strs:] {
		delete(a.literals, v)
	}
	a.values = a.values[:cp.strs]
	a.temps = cp.temps
	a.strs = cp.strs
}
