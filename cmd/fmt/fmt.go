package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/brenoafb/tinypascal/pkg/driver"
)

var (
	input = flag.String("i", "", "input file")
)

// fmt prints the recorded op listing of every unit in a program.
func main() {
	flag.Parse()

	if *input == "" {
		panic("please provide an input file")
	}

	f, err := os.Open(*input)
	if err != nil {
		panic("error opening file")
	}
	defer f.Close()

	res, err := driver.Check(f, zerolog.Nop())

	for _, d := range res.Diagnostics {
		fmt.Fprintln(os.Stderr, d)
	}

	if err != nil && !errors.Is(err, driver.ErrCompilation) {
		panic(fmt.Errorf("check error: %w", err))
	}

	fmt.Print(res.IR.String())
}
