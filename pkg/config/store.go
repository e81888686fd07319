package config

import (
	"fmt"
	"strings"
)

// StoreConfig locates the delimited catalog file. An empty path lets the
// store fall back to its default file name in the working directory.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// String returns a string representation of the store configuration.
func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  path: %s\n", c.Path))
	return b.String()
}

func (c *StoreConfig) Validate() error {
	return nil
}
