package transform

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// LoadEnvFile reads KEY=value pairs from a dotenv file.
func LoadEnvFile(fs afero.Fs, path string) (map[string]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing env file %s: %w", path, err)
	}
	return vars, nil
}

// ParseVarFlags parses repeated key=value flags. The value may contain '='.
func ParseVarFlags(flags []string) (map[string]string, error) {
	vars := make(map[string]string, len(flags))
	for _, f := range flags {
		key, val, ok := strings.Cut(f, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable '%s' — use key=value", f)
		}
		vars[key] = val
	}
	return vars, nil
}
