package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"linh/pipeline"
)

type emitCmd struct{}

func (*emitCmd) Name() string     { return "emit" }
func (*emitCmd) Synopsis() string { return "Print the disassembled bytecode for a source file" }
func (*emitCmd) Usage() string {
	return `emit <file>:
  Lex, parse, analyze, and compile a linh source file, printing its
  disassembled bytecode to stdout without running it.
`
}

func (*emitCmd) SetFlags(f *flag.FlagSet) {}

func (cmd *emitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "emit: no file provided")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrapf(err, "emit: reading %q", args[0]))
		return subcommands.ExitFailure
	}

	p := pipeline.New()
	tokens, err := p.Lex(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "lex error: %v\n", err)
		return subcommands.ExitFailure
	}

	statements, hadError, parseErrs := p.Parse(tokens)
	if hadError {
		for _, pErr := range parseErrs {
			fmt.Fprintln(os.Stderr, pErr)
		}
		return subcommands.ExitFailure
	}

	if semErrs := p.Analyze(statements); len(semErrs) > 0 {
		for _, sErr := range semErrs {
			fmt.Fprintln(os.Stderr, sErr)
		}
		return subcommands.ExitFailure
	}

	bc, compErrs := p.Emit(statements)
	if len(compErrs) > 0 {
		for _, cErr := range compErrs {
			fmt.Fprintln(os.Stderr, cErr)
		}
		return subcommands.ExitFailure
	}

	fmt.Print(disassemble(bc))
	return subcommands.ExitSuccess
}
