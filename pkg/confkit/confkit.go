package confkit

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath expands environment variables in file and anchors relative
// results at base.
func ResolvePath(base, file string) string {
	file = strings.TrimSpace(os.ExpandEnv(file))
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// Section is a config block kept in its own file. File is resolved against
// the main config directory and Value holds the parsed result.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate loads File through loader. An empty File leaves the section untouched.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if strings.TrimSpace(s.File) == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}

// Or returns the hydrated value, or def() when nothing was loaded.
func (s *Section[T]) Or(def func() *T) *T {
	if s.Value != nil {
		return s.Value
	}
	return def()
}
