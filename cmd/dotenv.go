package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/evalstate/finetune/envconfig"
)

// LoadDotEnv loads environment variables from a .env file in the data
// directory (~/.finetune by default). A missing file is not an error.
func LoadDotEnv() error {
	envPath := filepath.Join(envconfig.DataDir(), ".env")

	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to check if .env file exists: %w", err)
	}

	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("could not load %s: %w", envPath, err)
	}

	return nil
}
