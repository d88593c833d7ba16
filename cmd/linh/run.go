package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"linh/bytecode"
	"linh/host"
	"linh/pipeline"
	"linh/vm"
)

type runCmd struct {
	trace bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Run a source file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Lex, parse, analyze, compile, and execute a linh source file.
`
}

func (cmd *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.trace, "trace", false, "disassemble the compiled bytecode to stderr before running it")
}

func (cmd *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "run: no file provided")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrapf(err, "run: reading %q", args[0]))
		return subcommands.ExitFailure
	}

	p := pipeline.New()
	p.Loader = host.FileModuleLoader{Dir: filepath.Dir(args[0])}
	machine := vm.New(host.NullProvider{})

	result, runErr := p.Run(machine, string(data))
	if cmd.trace {
		fmt.Fprintln(os.Stderr, disassemble(result.Bytecode))
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr.Error())
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func disassemble(bc bytecode.Bytecode) string {
	out := "<module>\n" + bytecode.DisassembleAll(bc.Instructions)
	for name, proto := range bc.Functions {
		out += "\n" + name + "\n" + bytecode.DisassembleAll(proto.Code)
	}
	return out
}
