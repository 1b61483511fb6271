package ir

import (
	"fmt"
	"strings"
)

func (o Operand) String() string {
	switch o.Kind {
	case OperandNone:
		return "<none>"
	case OperandInt:
		return fmt.Sprintf("%d", o.Int)
	case OperandBool:
		if o.Bool {
			return "true"
		}
		return "false"
	case OperandString:
		if o.Sym != nil {
			return o.Sym.Label
		}
		return fmt.Sprintf("%q", o.Str)
	case OperandVar, OperandTemp:
		return o.Sym.Label
	default:
		return "unknown_operand"
	}
}

func (op Op) String() string {
	switch op.Kind {
	case OpBinary:
		return fmt.Sprintf("%s := %s %s %s", op.Dst.Label, op.Left, op.Operator, op.Right)
	case OpStore:
		return fmt.Sprintf("%s := %s", op.Dst.Label, op.Src)
	case OpStoreAcc:
		return fmt.Sprintf("%s := acc", op.Dst.Label)
	case OpPrint:
		return fmt.Sprintf("print %s", op.Src)
	case OpRead:
		return fmt.Sprintf("read %s", op.Dst.Label)
	default:
		return "unknown_op"
	}
}

func (u *Unit) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", u.Name)
	for _, op := range u.Ops {
		fmt.Fprintf(&b, "  %s\n", op)
	}
	return b.String()
}

func (p *Program) String() string {
	var b strings.Builder
	b.WriteString(p.Main.String())
	for _, u := range p.Procs {
		b.WriteString(u.String())
	}
	return b.String()
}
