package vm

import (
	"linh/value"
)

// indexGet implements OP_INDEX_GET: polymorphic over array (by integer
// index), map (by any value's string-rendered key), and sol/anything
// else, which all yield sol rather than erroring — the spec treats a
// missing key or an out-of-range index the same as "no value there".
func indexGet(obj, index value.Value) value.Value {
	switch obj.Kind {
	case value.KindArray:
		if index.Kind != value.KindInt && index.Kind != value.KindUint {
			return value.Sol
		}
		v, ok := obj.Array.Get(int(toInt(index)))
		if !ok {
			return value.Sol
		}
		return v
	case value.KindMap:
		v, ok := obj.Map.Get(index)
		if !ok {
			return value.Sol
		}
		return v
	default:
		return value.Sol
	}
}

// indexSet implements OP_INDEX_SET. Assigning out of an array's current
// bounds is a no-op write (the array's length never changes through
// subscript assignment; growth only happens through "append").
func indexSet(obj, index, val value.Value, line int32, column int) error {
	switch obj.Kind {
	case value.KindArray:
		if index.Kind != value.KindInt && index.Kind != value.KindUint {
			return newRuntimeError(line, column, "array index must be numeric")
		}
		obj.Array.Set(int(toInt(index)), val)
		return nil
	case value.KindMap:
		obj.Map.Set(index, val)
		return nil
	default:
		return newRuntimeError(line, column, "cannot index into a %s value", obj.Kind)
	}
}

func deleteIndex(obj, index value.Value, line int32, column int) error {
	switch obj.Kind {
	case value.KindArray:
		if index.Kind != value.KindInt && index.Kind != value.KindUint {
			return newRuntimeError(line, column, "array index must be numeric")
		}
		obj.Array.Remove(int(toInt(index)))
		return nil
	case value.KindMap:
		obj.Map.Delete(index)
		return nil
	default:
		return newRuntimeError(line, column, "cannot delete from a %s value", obj.Kind)
	}
}

// getProperty implements OP_GET_PROPERTY, the sugar "m.a" compiles to
// for a non-package receiver: member access is indexing by the field's
// name as a text key, meaningful only for maps.
func getProperty(obj value.Value, name string, line int32, column int) (value.Value, error) {
	if obj.Kind != value.KindMap {
		return value.Sol, newRuntimeError(line, column, "'.%s' is only valid on a map value", name)
	}
	v, _ := obj.Map.Get(value.String(name))
	return v, nil
}

// callContainerMethod implements OP_CALL_METHOD's Bool==false case: the
// built-in array/map methods, dispatched here by name (the emitter passes
// any method name through; see compiler.VisitMethodCall): append/remove/
// clear/clone/pop on arrays, delete/clear/keys/values/clone on maps.
func callContainerMethod(receiver value.Value, method string, args []value.Value, line int32, column int) (value.Value, error) {
	switch receiver.Kind {
	case value.KindArray:
		return callArrayMethod(receiver.Array, method, args, line, column)
	case value.KindMap:
		return callMapMethod(receiver.Map, method, args, line, column)
	default:
		return value.Sol, newRuntimeError(line, column, "'%s' is not a container method of a %s value", method, receiver.Kind)
	}
}

func callArrayMethod(arr *value.Array, method string, args []value.Value, line int32, column int) (value.Value, error) {
	switch method {
	case "append":
		for _, a := range args {
			arr.Append(a)
		}
		return value.Sol, nil
	case "remove":
		if len(args) != 1 {
			return value.Sol, newRuntimeError(line, column, "'remove' takes exactly one argument")
		}
		for i, el := range arr.Elements {
			if value.Equal(el, args[0]) {
				arr.Remove(i)
				break
			}
		}
		return value.Sol, nil
	case "clear":
		arr.Clear()
		return value.Sol, nil
	case "clone":
		return value.FromArray(arr.Clone()), nil
	case "pop":
		if len(args) == 0 {
			v, _ := arr.Pop()
			return v, nil
		}
		if len(args) != 1 || !args[0].IsNumeric() {
			return value.Sol, newRuntimeError(line, column, "'pop' takes at most one numeric index argument")
		}
		idx := int(toInt(args[0]))
		v, ok := arr.Get(idx)
		if !ok {
			return value.Sol, nil
		}
		arr.Remove(idx)
		return v, nil
	default:
		return value.Sol, newRuntimeError(line, column, "arrays have no method '%s'", method)
	}
}

func callMapMethod(m *value.Map, method string, args []value.Value, line int32, column int) (value.Value, error) {
	switch method {
	case "delete":
		if len(args) != 1 {
			return value.Sol, newRuntimeError(line, column, "'delete' takes exactly one argument")
		}
		m.Delete(args[0])
		return value.Sol, nil
	case "clear":
		m.Clear()
		return value.Sol, nil
	case "keys":
		return value.FromArray(value.NewArray(m.Keys())), nil
	case "values":
		return value.FromArray(value.NewArray(m.Values())), nil
	case "clone":
		return value.FromMap(m.Clone()), nil
	default:
		return value.Sol, newRuntimeError(line, column, "maps have no method '%s'", method)
	}
}
