package compiler

import (
	"fmt"
	"io"
	"strings"
)

type Section int

const (
	Exports Section = iota
	Imports
	Data
	BSS
	Text
	sectionCount
)

var sectionNames = map[Section]string{
	Data: ".data",
	BSS:  ".bss",
	Text: ".text",
}

// Buffer is the append-only code buffer, one line list per section.
type Buffer struct {
	sections [sectionCount][]string
}

func (b *Buffer) Append(s Section, line string) {
	b.sections[s] = append(b.sections[s], line)
}

func (b *Buffer) Lines(s Section) []string {
	return b.sections[s]
}

// WriteTo renders the sections in their fixed order.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	for _, s := range []Section{Exports, Imports} {
		for _, line := range b.sections[s] {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	for _, s := range []Section{Data, BSS, Text} {
		fmt.Fprintf(&sb, "\nsection %s\n", sectionNames[s])
		for _, line := range b.sections[s] {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// dbString renders s as the operand list of a NASM db directive,
// with line breaks as byte 10 and a terminating zero.
func dbString(s string) string {
	parts := make([]string, 0, 2)

	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			parts = append(parts, "10")
		}
		if line != "" {
			parts = append(parts, `"`+line+`"`)
		}
	}
	parts = append(parts, "0")

	return strings.Join(parts, ", ")
}
