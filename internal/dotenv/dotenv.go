package dotenv

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// Load reads .env files into the environment. Variables that are already set
// win over the files, so real deployment settings are never clobbered.
func Load(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// LoadDefault loads .env from the current directory
func LoadDefault() error {
	return Load(".env")
}

// LoadOptional is LoadDefault that treats a missing file as fine.
func LoadOptional(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	err := Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Read parses a .env file without touching the environment.
func Read(filename string) (map[string]string, error) {
	vals, err := godotenv.Read(filename)
	if err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return vals, nil
}
