// Package host defines the two extension points the core pipeline calls
// out through, rather than importing: resolving "package.CONST"/
// "package.method(...)" references against built-in packages (math,
// time, ...), and loading another source file's text for "import". Both
// are explicitly out of core scope (see SPEC_FULL.md's Non-goals) — the
// core interpreter ships a NullProvider/NullLoader and an embedding
// program supplies real ones.
package host

import "linh/value"

// PackageProvider resolves a package-qualified constant or method call
// that the semantic analyzer recognised as referring to a built-in
// package rather than a user value (e.g. "math.PI", "math.sqrt(x)").
type PackageProvider interface {
	// HasPackage reports whether name refers to a known built-in package.
	HasPackage(name string) bool

	// Const resolves "pkg.NAME" to a value.
	Const(pkg, name string) (value.Value, error)

	// Call invokes "pkg.method(args...)" and returns its result.
	Call(pkg, method string, args []value.Value) (value.Value, error)
}

// ModuleLoader resolves an "import" statement's path to source text, so
// the compiler can recursively lex/parse/analyze/emit it and merge the
// result into the importing module.
type ModuleLoader interface {
	// Load returns the source text for the module at path.
	Load(path string) (string, error)
}

// NullProvider answers every package query as unknown; it is the default
// used when an embedder supplies no host integration.
type NullProvider struct{}

func (NullProvider) HasPackage(name string) bool { return false }

func (NullProvider) Const(pkg, name string) (value.Value, error) {
	return value.Sol, &UnsupportedError{Package: pkg, Name: name}
}

func (NullProvider) Call(pkg, method string, args []value.Value) (value.Value, error) {
	return value.Sol, &UnsupportedError{Package: pkg, Name: method}
}

// NullLoader fails every import; it is the default used when an embedder
// supplies no module resolution.
type NullLoader struct{}

func (NullLoader) Load(path string) (string, error) {
	return "", &UnsupportedError{Package: path, Name: "import"}
}

// UnsupportedError reports a reference to a package or module the host
// does not provide.
type UnsupportedError struct {
	Package string
	Name    string
}

func (e *UnsupportedError) Error() string {
	return "host does not provide '" + e.Package + "." + e.Name + "'"
}
