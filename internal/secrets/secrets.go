// Package secrets resolves credentials from the environment or from mounted
// secret files.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirEnv names a directory holding one file per secret, e.g. /run/secrets
const DirEnv = "WALLETSCAN_SECRETS_DIR"

// lookup resolves a secret. KEY_FILE wins over KEY, and KEY wins over a file
// named after the lowercased key in the secrets directory. found is false if
// no source defines the secret.
func lookup(envKey string) (value string, found bool, err error) {
	if path := os.Getenv(envKey + "_FILE"); path != "" {
		v, err := readSecretFile(path)
		return v, err == nil, err
	}

	if v, ok := os.LookupEnv(envKey); ok && v != "" {
		return v, true, nil
	}

	if dir := os.Getenv(DirEnv); dir != "" {
		path := filepath.Join(dir, strings.ToLower(envKey))
		if _, statErr := os.Stat(path); statErr == nil {
			v, err := readSecretFile(path)
			return v, err == nil, err
		}
	}

	return "", false, nil
}

// Get resolves a secret, falling back to defaultValue when it is not set.
// A secret file that exists but cannot be read is an error.
func Get(envKey, defaultValue string) (string, error) {
	v, found, err := lookup(envKey)
	if err != nil {
		return "", err
	}
	if !found {
		return defaultValue, nil
	}
	return v, nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read secret file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
