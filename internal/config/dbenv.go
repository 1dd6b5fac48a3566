package config

import (
	"bufio"
	"os"
	"strings"
)

// applyDBEnv reads a key=value file (the plugin-managed db.env) and applies
// any recognized database settings. Missing file is not an error; the
// hardcoded defaults stand.
func (c *Config) applyDBEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if v, ok := values["CURIO_DB_HOST"]; ok {
		c.DB.Host = v
	}
	if v, ok := values["CURIO_DB_PORT"]; ok {
		c.DB.Port = v
	}
	if v, ok := values["CURIO_DB_NAME"]; ok {
		c.DB.Name = v
	}
	if v, ok := values["CURIO_DB_USER"]; ok {
		c.DB.User = v
	}
	if v, ok := values["CURIO_DB_PASSWORD"]; ok {
		c.DB.Password = v
	}
}
