package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetGlobalConfigDir returns the path to the global configuration directory
// (~/.mentorhub). It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultRootDir), nil
}

// GetDataDir returns the directory holding the collection backing files.
// Resolution order (first match wins):
// 1. Explicit config via "data.dir" (Viper/env/flag)
// 2. Local project directory: .mentorhub/data (if it exists)
// 3. XDG_DATA_HOME/mentorhub/data (if XDG_DATA_HOME is set)
// 4. Global fallback: ~/.mentorhub/data
func GetDataDir() string {
	if path := viper.GetString("data.dir"); path != "" {
		return path
	}

	local := filepath.Join(DefaultRootDir, DefaultDataDir)
	if info, err := os.Stat(local); err == nil && info.IsDir() {
		return local
	}

	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "mentorhub", DefaultDataDir)
	}

	dir, err := GetGlobalConfigDir()
	if err != nil {
		return filepath.Join(".", DefaultDataDir)
	}
	return filepath.Join(dir, DefaultDataDir)
}
