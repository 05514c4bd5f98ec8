package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"github.com/joho/godotenv"
)

// EnvFiles are loaded from the configuration directory before expansion. Earlier files
// win because variables that are already set are never overridden.
var EnvFiles = []string{".env.local", ".env"}

func loadEnvFiles(dir string) error {
	for _, name := range EnvFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return ferrors.ConfigError("failed to load environment file").
				WithContext("path", path).WithCause(err).Build()
		}
	}
	return nil
}
