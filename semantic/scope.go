package semantic

import "linh/ast"

// symbol records what the analyzer knows about one declared name.
type symbol struct {
	kind       ast.DeclKind
	declaredAt int32
}

// scope is one lexical block's symbol table.
type scope struct {
	symbols map[string]symbol
}

func newScope() *scope {
	return &scope{symbols: make(map[string]symbol)}
}

func (a *Analyzer) pushScope() {
	a.scopes = append(a.scopes, newScope())
}

func (a *Analyzer) popScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

func (a *Analyzer) currentScope() *scope {
	return a.scopes[len(a.scopes)-1]
}

// lookup searches innermost-to-outermost for name, returning the symbol
// and whether it was found.
func (a *Analyzer) lookup(name string) (symbol, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if sym, ok := a.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}
	return symbol{}, false
}
