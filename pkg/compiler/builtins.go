package compiler

import (
	"fmt"

	"github.com/brenoafb/tinypascal/pkg/ir"
	"github.com/brenoafb/tinypascal/pkg/symtab"
)

type lowering func(c *Compiler, op ir.Op) error

var lowerings map[ir.OpKind]lowering

func init() {
	lowerings = map[ir.OpKind]lowering{
		// dst := left <op> right, result left in eax
		ir.OpBinary: func(c *Compiler, op ir.Op) error {
			left, err := c.operand(op.Left)
			if err != nil {
				return fmt.Errorf("error lowering left operand: %w", err)
			}
			right, err := c.operand(op.Right)
			if err != nil {
				return fmt.Errorf("error lowering right operand: %w", err)
			}

			c.emit("mov eax, %s", left)

			switch op.Operator {
			case ir.Add:
				c.emit("add eax, %s", right)
			case ir.Sub:
				c.emit("sub eax, %s", right)
			case ir.Mul:
				c.emit("imul eax, %s", right)
			case ir.Div:
				c.emit("cdq")
				c.emit("mov ecx, %s", right)
				c.emit("idiv ecx")
			default:
				return fmt.Errorf("unsupported operator %s", op.Operator)
			}

			c.emit("mov %s, eax", memory(op.Dst))
			return nil
		},

		ir.OpStore: func(c *Compiler, op ir.Op) error {
			dst := op.Dst

			if op.Src.IsMemory() {
				src := op.Src.Sym
				if src.Type == symtab.StringType {
					c.emit("mov esi, %s", symLabel(src))
					c.emit("mov edi, %s", symLabel(dst))
					c.emit("mov ecx, %d", stringBufSize)
					c.emit("rep movsb")
					return nil
				}
				c.emit("mov eax, %s", memory(src))
				c.emit("mov %s, eax", memory(dst))
				return nil
			}

			switch op.Src.Kind {
			case ir.OperandInt, ir.OperandBool:
				v, err := c.operand(op.Src)
				if err != nil {
					return err
				}
				c.emit("mov %s, %s", memory(dst), v)
				return nil
			}

			return fmt.Errorf("cannot store %s", op.Src)
		},

		ir.OpStoreAcc: func(c *Compiler, op ir.Op) error {
			c.emit("mov %s, eax", memory(op.Dst))
			return nil
		},

		ir.OpPrint: func(c *Compiler, op ir.Op) error {
			src := op.Src

			switch src.Kind {
			case ir.OperandInt, ir.OperandBool:
				v, err := c.operand(src)
				if err != nil {
					return err
				}
				c.call(printRoutine, intOutFormat, v)
				return nil
			case ir.OperandString:
				v, err := c.operand(src)
				if err != nil {
					return err
				}
				c.call(printRoutine, strOutFormat, v)
				return nil
			case ir.OperandVar, ir.OperandTemp:
				if src.Sym.Type == symtab.StringType {
					c.call(printRoutine, strOutFormat, symLabel(src.Sym))
					return nil
				}
				c.call(printRoutine, intOutFormat, memory(src.Sym))
				return nil
			}

			return fmt.Errorf("cannot print %s", src)
		},

		ir.OpRead: func(c *Compiler, op ir.Op) error {
			switch op.Dst.Type {
			case symtab.IntType:
				c.call(scanRoutine, intInFormat, symLabel(op.Dst))
				return nil
			case symtab.StringType:
				c.call(scanRoutine, strInFormat, symLabel(op.Dst))
				return nil
			}

			return fmt.Errorf("cannot read a value of type %s", op.Dst.Type)
		},
	}
}
