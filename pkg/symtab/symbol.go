package symtab

import (
	"fmt"
	"strings"

	"github.com/brenoafb/tinypascal/pkg/token"
)

type Kind int

const (
	None Kind = iota
	Int
	String
	Boolean
	Array
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Int:
		return "int"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case Array:
		return "array"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is a declared type. Elem is only meaningful for arrays.
type Type struct {
	Kind Kind
	Elem Kind
}

var (
	NoType      = Type{Kind: None}
	IntType     = Type{Kind: Int}
	StringType  = Type{Kind: String}
	BooleanType = Type{Kind: Boolean}
)

func ArrayOf(elem Kind) Type {
	return Type{Kind: Array, Elem: elem}
}

func (t Type) String() string {
	if t.Kind == Array {
		return "array of " + t.Elem.String()
	}
	return t.Kind.String()
}

// ElemType is the type of one element of an array type.
func (t Type) ElemType() Type {
	return Type{Kind: t.Elem}
}

func (t Type) Scalar() bool {
	return t.Kind == Int || t.Kind == String || t.Kind == Boolean
}

type Class int

const (
	Scalar Class = iota
	ArrayVar
	ValueParam
	RefParam
	Procedure
)

func (c Class) String() string {
	switch c {
	case Scalar:
		return "scalar"
	case ArrayVar:
		return "array"
	case ValueParam:
		return "vparam"
	case RefParam:
		return "rparam"
	case Procedure:
		return "procedure"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

type Mode int

const (
	ByValue Mode = iota
	ByRef
)

// Dim is one inclusive array dimension.
type Dim struct {
	Lower int32
	Upper int32
}

type Param struct {
	Name string
	Type Type
	Mode Mode
}

type Symbol struct {
	Name  string
	Label string
	Type  Type
	Class Class
	Scope int
	Pos   token.Pos

	Dims   []Dim
	Params []Param

	// Literal is set on string symbols that live in initialized data.
	Literal *string
	// Synthetic symbols are generated by the compiler, never by source.
	Synthetic bool
}

func (s *Symbol) ParamTypes() []Type {
	types := make([]Type, 0, len(s.Params))
	for _, p := range s.Params {
		types = append(types, p.Type)
	}
	return types
}

func (s *Symbol) ParamModes() []Mode {
	modes := make([]Mode, 0, len(s.Params))
	for _, p := range s.Params {
		modes = append(modes, p.Mode)
	}
	return modes
}

func (s *Symbol) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", s.Name, s.Class, s.Type)

	for _, d := range s.Dims {
		fmt.Fprintf(&b, " [%d..%d]", d.Lower, d.Upper)
	}

	if s.Class == Procedure {
		params := make([]string, 0, len(s.Params))
		for _, p := range s.Params {
			marker := ""
			if p.Mode == ByRef {
				marker = "*"
			}
			params = append(params, fmt.Sprintf("%s %s%s", p.Type, marker, p.Name))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(params, ", "))
	}

	if s.Literal != nil {
		fmt.Fprintf(&b, " %q", *s.Literal)
	}

	return b.String()
}
