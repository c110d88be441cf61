package confkit

import (
	"os"
	"path/filepath"
	"runtime"
)

const maxRootDepth = 8

// walkUp calls visit for start and each parent until visit returns true,
// the filesystem root is reached or maxRootDepth levels were seen.
func walkUp(start string, visit func(dir string) bool) {
	dir := start
	for i := 0; i < maxRootDepth; i++ {
		if visit(dir) {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func isRoot(dir string) bool {
	return exists(filepath.Join(dir, "go.mod")) || exists(filepath.Join(dir, ".git"))
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func sourceDir() (string, bool) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", false
	}
	return filepath.Dir(file), true
}

// ProjectRoot finds the module root above this package, falling back to the
// working directory when the source tree is not available.
func ProjectRoot() (string, error) {
	if dir, ok := sourceDir(); ok {
		var root string
		walkUp(dir, func(d string) bool {
			if isRoot(d) {
				root = d
				return true
			}
			return false
		})
		if root != "" {
			return root, nil
		}
	}
	return os.Getwd()
}

// MustProjectPath joins the project root with rel, using "." when the root
// cannot be determined.
func MustProjectPath(rel string) string {
	root, err := ProjectRoot()
	if err != nil {
		root = "."
	}
	return filepath.Join(root, rel)
}
