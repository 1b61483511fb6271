package symtab

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brenoafb/tinypascal/pkg/token"
)

func scalar(name string, typ Type) *Symbol {
	return &Symbol{Name: name, Type: typ, Class: Scalar}
}

func TestDeclareDuplicateInScope(t *testing.T) {
	tbl := New()
	tbl.Enter()

	require.NoError(t, tbl.Declare(scalar("x", IntType)))
	err := tbl.Declare(scalar("x", IntType))
	require.ErrorIs(t, err, ErrDuplicateInScope)

	require.Equal(t, 1, tbl.Len())
	require.Equal(t, []int{1}, tbl.Scopes("x"))
}

func TestShadowingCreatesSeparateRecords(t *testing.T) {
	tbl := New()
	outer := tbl.Enter()
	require.NoError(t, tbl.Declare(scalar("x", IntType)))

	inner := tbl.Enter()
	require.NoError(t, tbl.Declare(scalar("x", StringType)))

	sym, ok := tbl.Lookup("x")
	require.True(t, ok)
	require.Equal(t, StringType, sym.Type)
	require.Equal(t, inner, sym.Scope)
	require.Equal(t, "x@2", sym.Label)

	require.Equal(t, []int{outer, inner}, tbl.Scopes("x"))

	tbl.Exit()

	sym, ok = tbl.Lookup("x")
	require.True(t, ok)
	require.Equal(t, IntType, sym.Type, "inner type must not leak into the outer scope")
	require.Equal(t, "x", sym.Label)
	require.Equal(t, 2, tbl.Len())
}

func TestLookupWalksEnclosingScopes(t *testing.T) {
	tbl := New()
	tbl.Enter()
	require.NoError(t, tbl.Declare(scalar("g", IntType)))
	tbl.Enter()

	sym, ok := tbl.Lookup("g")
	require.True(t, ok)
	require.Equal(t, "g", sym.Name)

	_, ok = tbl.Lookup("missing")
	require.False(t, ok)
}

func TestIsVisible(t *testing.T) {
	tbl := New()
	top := tbl.Enter()
	require.NoError(t, tbl.Declare(scalar("g", IntType)))

	proc := tbl.Enter()
	require.NoError(t, tbl.Declare(scalar("l", IntType)))
	tbl.Exit()

	sibling := tbl.Enter()
	tbl.Exit()

	require.True(t, tbl.IsVisible("g", top))
	require.True(t, tbl.IsVisible("g", proc))
	require.True(t, tbl.IsVisible("l", proc))
	require.False(t, tbl.IsVisible("l", top))
	require.False(t, tbl.IsVisible("l", sibling))
	require.False(t, tbl.IsVisible("g", 99))
}

func TestSymbolsKeepDeclarationOrder(t *testing.T) {
	tbl := New()
	tbl.Enter()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, tbl.Declare(scalar(name, IntType)))
	}

	names := []string{}
	for _, s := range tbl.Symbols() {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{"c", "a", "b"}, names)
}

func TestArena(t *testing.T) {
	tbl := New()
	tbl.Enter()
	a := NewArena()

	t0 := a.Temp(tbl, token.Pos{Line: 1, Column: 1})
	t1 := a.Temp(tbl, token.Pos{Line: 1, Column: 5})
	require.Equal(t, "_t0", t0.Name)
	require.Equal(t, "_t1", t1.Name)
	require.Equal(t, IntType, t1.Type)
	require.True(t, t1.Synthetic)

	hi := a.Literal(tbl, "hi", token.Pos{Line: 2, Column: 1})
	again := a.Literal(tbl, "hi", token.Pos{Line: 3, Column: 1})
	other := a.Literal(tbl, "bye", token.Pos{Line: 4, Column: 1})

	require.Same(t, hi, again)
	require.Equal(t, "_s0", hi.Name)
	require.Equal(t, "_s1", other.Name)
	require.Equal(t, "hi", *hi.Literal)
	require.Equal(t, 4, tbl.Len())
}

func TestArenaRewind(t *testing.T) {
	tbl := New()
	tbl.Enter()
	require.NoError(t, tbl.Declare(&Symbol{Name: "x", Type: IntType}))

	a := NewArena()
	a.Literal(tbl, "kept", token.Pos{})

	n := tbl.Len()
	cp := a.Checkpoint()
	a.Temp(tbl, token.Pos{})
	a.Literal(tbl, "dropped", token.Pos{})

	tbl.Truncate(n)
	a.Rewind(cp)

	require.Equal(t, 2, tbl.Len())
	require.Empty(t, tbl.Scopes("_t0"))
	require.Empty(t, tbl.Scopes("_s1"))

	t0 := a.Temp(tbl, token.Pos{})
	require.Equal(t, "_t0", t0.Name)
	require.Equal(t, "_t0", t0.Label)

	again := a.Literal(tbl, "dropped", token.Pos{})
	require.Equal(t, "_s1", again.Name)
	require.Equal(t, "kept", *a.Literal(tbl, "kept", token.Pos{}).Literal)
	require.Equal(t, 4, tbl.Len())
}

func TestProcedureParams(t *testing.T) {
	p := &Symbol{
		Name:  "swap",
		Class: Procedure,
		Params: []Param{
			{Name: "a", Type: IntType, Mode: ByRef},
			{Name: "s", Type: StringType, Mode: ByValue},
		},
	}

	require.Equal(t, []Type{IntType, StringType}, p.ParamTypes())
	require.Equal(t, []Mode{ByRef, ByValue}, p.ParamModes())
	require.Equal(t, "swap procedure none (int *a, string s)", p.String())
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "array of boolean", ArrayOf(Boolean).String())
	require.Equal(t, BooleanType, ArrayOf(Boolean).ElemType())
	require.True(t, StringType.Scalar())
	require.False(t, ArrayOf(Int).Scalar())
}

func TestWriteTo(t *testing.T) {
	tbl := New()
	tbl.Enter()
	require.NoError(t, tbl.Declare(&Symbol{Name: "y", Type: IntType, Pos: token.Pos{Line: 2}}))
	require.NoError(t, tbl.Declare(&Symbol{Name: "x", Type: StringType, Pos: token.Pos{Line: 3}}))

	out := &bytes.Buffer{}
	n, err := tbl.WriteTo(out)
	require.NoError(t, err)
	require.Equal(t, int64(out.Len()), n)
	require.Equal(t, `SCOPE  NAME  LABEL  CLASS   TYPE    LINE
1      x     x      scalar  string  3
1      y     y      scalar  int     2
`, out.String())
}

func TestWriteToNaturalOrder(t *testing.T) {
	tbl := New()
	tbl.Enter()

	arena := NewArena()
	for i := 0; i < 11; i++ {
		arena.Temp(tbl, token.Pos{Line: 1})
	}

	out := &bytes.Buffer{}
	_, err := tbl.WriteTo(out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 12)
	require.True(t, strings.HasPrefix(lines[3], "1      _t2 "), lines[3])
	require.True(t, strings.HasPrefix(lines[11], "1      _t10 "), lines[11])
}
