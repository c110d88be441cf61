package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce reads .env files once per process. ENV_FILE names a single
// file; otherwise every .env from this package up to the module root is
// read. Variables already set win unless DOTENV_OVERLOAD=1. NO_DOTENV=1
// disables loading.
func LoadDotenvOnce() {
	dotenvOnce.Do(func() {
		for _, p := range dotenvFiles() {
			loadDotenv(p)
		}
	})
}

func dotenvFiles() []string {
	if os.Getenv("NO_DOTENV") == "1" {
		return nil
	}
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return []string{envFile}
	}
	dir, ok := sourceDir()
	if !ok {
		return []string{".env"}
	}
	var files []string
	walkUp(dir, func(d string) bool {
		if p := filepath.Join(d, ".env"); exists(p) {
			files = append(files, p)
		}
		return isRoot(d)
	})
	return files
}

func loadDotenv(path string) {
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		_ = godotenv.Overload(path)
		return
	}
	_ = godotenv.Load(path)
}
