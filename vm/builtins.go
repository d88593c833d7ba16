package vm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"linh/value"
)

// IO is the VM's external I/O collaborator: "input" blocks reading a
// line from Reader, "print"/"printf" write through Writer. Kept as a
// small struct rather than bare io.Reader/io.Writer fields so a caller
// can swap stdin/stdout for test buffers without touching VM internals.
type IO struct {
	Reader *bufio.Reader
	Writer io.Writer
}

func newIO(r io.Reader, w io.Writer) IO {
	return IO{Reader: bufio.NewReader(r), Writer: w}
}

// builtinNames mirrors semantic.builtinNames: the call-position names
// the VM dispatches before ever consulting user globals.
var builtinNames = map[string]bool{
	"pow": true, "sol": true, "str": true, "int": true, "uint": true,
	"float": true, "bool": true, "len": true, "id": true, "type": true,
	"input": true, "printf": true,
}

// callBuiltin implements every built-in named in builtinNames, reached
// when OP_CALL's callee resolved to a value.KindNative.
func callBuiltin(name string, args []value.Value, io IO, line int32, column int) (value.Value, error) {
	switch name {
	case "pow":
		if len(args) != 2 || !args[0].IsNumeric() || !args[1].IsNumeric() {
			return value.Sol, newRuntimeError(line, column, "pow takes two numeric arguments")
		}
		return value.Float(math.Pow(toFloat(args[0]), toFloat(args[1]))), nil
	case "sol":
		return value.Sol, nil
	case "str":
		return value.String(argOrSol(args).String()), nil
	case "int":
		return convertInt(argOrSol(args), line, column)
	case "uint":
		return convertUint(argOrSol(args), line, column)
	case "float":
		return convertFloat(argOrSol(args), line, column)
	case "bool":
		return value.Bool(argOrSol(args).IsTruthy()), nil
	case "len":
		return builtinLen(argOrSol(args), line, column)
	case "id":
		return builtinID(argOrSol(args)), nil
	case "type":
		return value.String(builtinType(argOrSol(args))), nil
	case "input":
		return builtinInput(io)
	case "printf":
		builtinPrintf(args, io)
		return value.Sol, nil
	}
	return value.Sol, newRuntimeError(line, column, "unknown built-in '%s'", name)
}

func argOrSol(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Sol
	}
	return args[0]
}

func convertInt(v value.Value, line int32, column int) (value.Value, error) {
	switch v.Kind {
	case value.KindInt:
		return v, nil
	case value.KindUint:
		return value.Int(int64(v.Uint)), nil
	case value.KindFloat:
		return value.Int(int64(v.Float)), nil
	case value.KindBool:
		if v.Bool {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return value.Sol, nil
		}
		return value.Int(n), nil
	default:
		return value.Sol, nil
	}
}

func convertUint(v value.Value, line int32, column int) (value.Value, error) {
	switch v.Kind {
	case value.KindUint:
		return v, nil
	case value.KindInt:
		return value.Uint(uint64(v.Int)), nil
	case value.KindFloat:
		return value.Uint(uint64(v.Float)), nil
	case value.KindBool:
		if v.Bool {
			return value.Uint(1), nil
		}
		return value.Uint(0), nil
	case value.KindString:
		n, err := strconv.ParseUint(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return value.Sol, nil
		}
		return value.Uint(n), nil
	default:
		return value.Sol, nil
	}
}

func convertFloat(v value.Value, line int32, column int) (value.Value, error) {
	switch v.Kind {
	case value.KindFloat:
		return v, nil
	case value.KindInt:
		return value.Float(float64(v.Int)), nil
	case value.KindUint:
		return value.Float(float64(v.Uint)), nil
	case value.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return value.Sol, nil
		}
		return value.Float(f), nil
	default:
		return value.Sol, nil
	}
}

func builtinLen(v value.Value, line int32, column int) (value.Value, error) {
	switch v.Kind {
	case value.KindArray:
		return value.Int(int64(len(v.Array.Elements))), nil
	case value.KindMap:
		return value.Int(int64(v.Map.Len())), nil
	case value.KindString:
		return value.Int(int64(len(v.Str))), nil
	default:
		return value.Sol, newRuntimeError(line, column, "len requires an array, map, or text value")
	}
}

// builtinID returns a stable hexadecimal address: the container's
// backing storage pointer for arrays/maps, matching the spec's "stable
// across aliases" requirement; for everything else (primitives have no
// addressable storage once boxed into a Value passed by copy) the
// address of the argument slot itself — stable only for the lifetime of
// this call, which is the documented simplification.
func builtinID(v value.Value) value.Value {
	switch v.Kind {
	case value.KindArray:
		return value.String(fmt.Sprintf("%p", v.Array))
	case value.KindMap:
		return value.String(fmt.Sprintf("%p", v.Map))
	default:
		return value.String(fmt.Sprintf("%p", &v))
	}
}

// builtinType reports one of the eight tags the spec names; uninit
// collapses to "sol" (both mean "no usable value" to user code) and a
// function/native callee — not reachable through ordinary script code,
// since nothing of that kind can flow into a "type(...)" argument except
// by first assigning it to a variable, which the language doesn't do for
// built-ins/functions — falls back to its own Kind name rather than
// erroring.
func builtinType(v value.Value) string {
	switch v.Kind {
	case value.KindSol, value.KindUninit:
		return "sol"
	case value.KindInt:
		return "int"
	case value.KindUint:
		return "uint"
	case value.KindFloat:
		return "float"
	case value.KindString:
		return "str"
	case value.KindBool:
		return "bool"
	case value.KindArray:
		return "array"
	case value.KindMap:
		return "map"
	default:
		return v.Kind.String()
	}
}

func builtinInput(io IO) (value.Value, error) {
	line, err := io.Reader.ReadString('\n')
	if err != nil && line == "" {
		return value.Sol, nil
	}
	return value.String(strings.TrimRight(line, "\r\n")), nil
}

// builtinPrintf renders every argument's text form back to back with no
// separator and no trailing newline (print appends one after each value;
// printf never does), per §4.4.
func builtinPrintf(args []value.Value, io IO) {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(a.String())
	}
	fmt.Fprint(io.Writer, sb.String())
}
