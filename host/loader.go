package host

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileModuleLoader resolves an "import" path to a ".linh" file under Dir,
// the straightforward ModuleLoader a CLI embedder wires in place of
// NullLoader. I/O failures are wrapped with github.com/pkg/errors the way
// db47h-ngaro's VM wraps a recovered fault with its program-counter
// context, so a caller can still recover the underlying *os.PathError via
// errors.Cause if it needs to distinguish "not found" from "permission
// denied".
type FileModuleLoader struct {
	Dir string
}

func (l FileModuleLoader) Load(path string) (string, error) {
	full := filepath.Join(l.Dir, path+".linh")
	data, err := os.ReadFile(full)
	if err != nil {
		return "", errors.Wrapf(err, "loading module %q", path)
	}
	return string(data), nil
}
