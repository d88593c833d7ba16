package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"linh/host"
	"linh/parser"
	"linh/pipeline"
	"linh/token"
	"linh/vm"
)

type replCmd struct {
	trace bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive read-eval-print loop.
`
}

func (cmd *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.trace, "trace", false, "disassemble each compiled statement before running it")
}

func (cmd *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("linh")
	scanner := bufio.NewScanner(os.Stdin)
	p := pipeline.New()
	machine := vm.New(host.NullProvider{})
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			fmt.Fprint(os.Stdout, ">>> ")
		} else {
			fmt.Fprint(os.Stdout, "... ")
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return subcommands.ExitFailure
			}
			return subcommands.ExitSuccess
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens, err := p.Lex(source)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			buffer.Reset()
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		statements, hadError, parseErrs := p.Parse(tokens)
		if hadError {
			if allParseErrorsAtEOF(parseErrs, tokens[len(tokens)-1]) {
				continue
			}
			for _, pErr := range parseErrs {
				fmt.Fprintln(os.Stderr, pErr)
			}
			buffer.Reset()
			continue
		}

		if semErrs := p.Analyze(statements); len(semErrs) > 0 {
			for _, sErr := range semErrs {
				fmt.Fprintln(os.Stderr, sErr)
			}
			buffer.Reset()
			continue
		}

		bc, compErrs := p.Emit(statements)
		if len(compErrs) > 0 {
			for _, cErr := range compErrs {
				fmt.Fprintln(os.Stderr, cErr)
			}
			buffer.Reset()
			continue
		}

		if cmd.trace {
			fmt.Fprintln(os.Stderr, disassemble(bc))
		}

		if err := p.Execute(machine, bc); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		buffer.Reset()
	}
}

// isInputReady reports whether tokens form a complete statement rather
// than an unfinished block or trailing operator — e.g. after typing
// "if (x > 5) {" the REPL should keep reading until the closing "}".
func isInputReady(tokens []token.Token) bool {
	braceBalance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			braceBalance++
		case token.RCUR:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.TokenType {
	case token.ASSIGN,
		token.ADD,
		token.SUB,
		token.MULT,
		token.DIV,
		token.BANG,
		token.EQUAL_EQUAL,
		token.NOT_EQUAL,
		token.LESS,
		token.LESS_EQUAL,
		token.LARGER,
		token.LARGER_EQUAL,
		token.COMMA,
		token.LPA,
		token.LCUR,
		token.IF,
		token.ELSE,
		token.WHILE,
		token.FOR,
		token.FUNC,
		token.RETURN,
		token.VAR,
		token.CONST,
		token.AND,
		token.OR,
		token.PRINT:
		return false
	}

	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}

// allParseErrorsAtEOF reports whether every parse error sits at the EOF
// token's own position, meaning the input just isn't finished yet rather
// than genuinely malformed.
func allParseErrorsAtEOF(parseErrs []error, eof token.Token) bool {
	for _, parseErr := range parseErrs {
		syntaxErr, ok := parseErr.(parser.SyntaxError)
		if !ok {
			return false
		}
		if syntaxErr.Line != eof.Line || syntaxErr.Column != eof.Column {
			return false
		}
	}
	return len(parseErrs) > 0
}
