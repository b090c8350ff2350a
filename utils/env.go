package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// LoadEnv loads a .env file into the environment if one is present,
// searching from the working directory up to three levels. Variables
// already set in the environment win.
func LoadEnv() {
	loadOnce.Do(func() {
		cwd, err := os.Getwd()
		if err != nil {
			return
		}

		dir := cwd
		for i := 0; i < 3; i++ {
			path := filepath.Join(dir, ".env")
			if st, err := os.Stat(path); err == nil && !st.IsDir() {
				_ = godotenv.Load(path)
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	})
}

// EnvString returns the named variable, or fallback when unset or empty.
func EnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvInt64 returns the named variable parsed as int64, or fallback when
// unset or unparsable.
func EnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
