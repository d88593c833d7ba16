package host

import (
	"math"
	"testing"

	"linh/value"
)

func TestNullProviderRejectsEverything(t *testing.T) {
	p := NullProvider{}
	if p.HasPackage("math") {
		t.Error("NullProvider should not recognize any package")
	}
	if _, err := p.Const("math", "PI"); err == nil {
		t.Error("NullProvider.Const should fail")
	}
	if _, err := p.Call("math", "sqrt", nil); err == nil {
		t.Error("NullProvider.Call should fail")
	}
}

func TestNullLoaderRejectsEveryImport(t *testing.T) {
	if _, err := (NullLoader{}).Load("utils"); err == nil {
		t.Error("NullLoader.Load should fail")
	}
}

// mathProvider is a minimal PackageProvider standing in for the kind of
// host integration an embedder plugs in where Non-goals exclude a math
// package from the core interpreter.
type mathProvider struct{}

func (mathProvider) HasPackage(name string) bool { return name == "math" }

func (mathProvider) Const(pkg, name string) (value.Value, error) {
	if pkg == "math" && name == "PI" {
		return value.Float(math.Pi), nil
	}
	return value.Sol, &UnsupportedError{Package: pkg, Name: name}
}

func (mathProvider) Call(pkg, method string, args []value.Value) (value.Value, error) {
	if pkg == "math" && method == "sqrt" && len(args) == 1 {
		return value.Float(math.Sqrt(args[0].Float)), nil
	}
	return value.Sol, &UnsupportedError{Package: pkg, Name: method}
}

func TestCustomProviderResolvesPackageReferences(t *testing.T) {
	p := mathProvider{}
	v, err := p.Const("math", "PI")
	if err != nil || v.Float != math.Pi {
		t.Fatalf("Const(math, PI) = %v, %v", v, err)
	}
	v, err = p.Call("math", "sqrt", []value.Value{value.Float(9)})
	if err != nil || v.Float != 3 {
		t.Fatalf("Call(math, sqrt, 9) = %v, %v", v, err)
	}
	if _, err := p.Const("math", "E"); err == nil {
		t.Error("an unknown constant should still fail")
	}
}
