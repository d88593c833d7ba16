package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestFileModuleLoaderReadsLinhFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "utils.linh"), []byte("func helper() { return 1; }"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	loader := FileModuleLoader{Dir: dir}
	src, err := loader.Load("utils")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src != "func helper() { return 1; }" {
		t.Errorf("got %q", src)
	}
}

func TestFileModuleLoaderWrapsMissingFile(t *testing.T) {
	loader := FileModuleLoader{Dir: t.TempDir()}
	_, err := loader.Load("missing")
	if err == nil {
		t.Fatal("expected an error for a missing module")
	}
	if !os.IsNotExist(errors.Cause(err)) {
		t.Errorf("expected the wrapped cause to be an os.IsNotExist error, got %v", errors.Cause(err))
	}
}
