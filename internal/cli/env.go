package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileVar overrides the --env flag when set.
const EnvFileVar = "UEBERSETZER_ENV_FILE"

// ErrNoEnvFile is returned when none of the candidate .env files exist.
var ErrNoEnvFile = errors.New("no env file found")

// EnvLoader loads .env files with a predictable override order.
type EnvLoader struct {
	value       *string
	defaultPath string
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	value := fs.String("env", defaultPath, description)
	return &EnvLoader{
		value:       value,
		defaultPath: defaultPath,
	}
}

// Load resolves and loads environment variables. Candidates are tried in
// order: $UEBERSETZER_ENV_FILE, the --env value, its basename, the default.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	var overrideErr error
	if custom := strings.TrimSpace(os.Getenv(EnvFileVar)); custom != "" {
		err := godotenv.Overload(custom)
		if err == nil {
			return custom, nil
		}
		overrideErr = fmt.Errorf("load %s=%s: %w", EnvFileVar, custom, err)
	}

	for _, candidate := range l.candidates() {
		if err := godotenv.Overload(candidate); err == nil {
			return candidate, nil
		}
	}

	if overrideErr != nil {
		return "", overrideErr
	}
	return "", ErrNoEnvFile
}

// LoadOptional loads env files and only reports failures other than a missing file.
func (l *EnvLoader) LoadOptional() error {
	if _, err := l.Load(); err != nil && !errors.Is(err, ErrNoEnvFile) {
		return err
	}
	return nil
}

func (l *EnvLoader) candidates() []string {
	requested := strings.TrimSpace(derefString(l.value))
	if requested == "" {
		requested = l.defaultPath
	}

	out := []string{requested}
	if base := filepath.Base(requested); base != "" && base != requested {
		out = append(out, base)
	}
	if requested != l.defaultPath {
		out = append(out, l.defaultPath)
	}
	return out
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
