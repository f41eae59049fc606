// Package secrets seeds and inspects the project's .env file.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// EnsureEnvFile copies the template verbatim to path when path does not
// exist. An existing file is never touched. A missing template surfaces as
// the read error, since the template ships with the project.
func EnsureEnvFile(path, templatePath string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	b, err := os.ReadFile(templatePath)
	if err != nil {
		return false, fmt.Errorf("copy %s from template: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

// KeyPresent reports whether the named key carries a non-empty value either
// in the process environment or in the env file at path.
func KeyPresent(key, envPath string) bool {
	if strings.TrimSpace(os.Getenv(key)) != "" {
		return true
	}
	b, err := os.ReadFile(envPath)
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == key && strings.TrimSpace(stripOuterQuotes(v)) != "" {
			return true
		}
	}
	return false
}

// WriteEnvFile creates the env file at path from key=value pairs, sorted,
// under a short comment header. A non-empty existing file is respected and
// left alone to avoid surprising overwrites.
func WriteEnvFile(path string, env map[string]string) error {
	if len(env) == 0 {
		return nil
	}
	if st, err := os.Stat(path); err == nil && st.Size() > 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("# Content Studio secrets. Keep real values out of version control.\n")
	for _, k := range keys {
		v := env[k]
		if strings.ContainsAny(v, "\n\r") {
			return fmt.Errorf("invalid value for %s (contains newline)", k)
		}
		b.WriteString(k + "=" + v + "\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// SetKey sets key=value in the env file at path, replacing an existing
// assignment line or appending one. Other lines are preserved byte for byte.
// A missing file is seeded through WriteEnvFile.
func SetKey(path, key, value string) error {
	if strings.ContainsAny(value, "\n\r") {
		return fmt.Errorf("invalid value for %s (contains newline)", key)
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return WriteEnvFile(path, map[string]string{key: value})
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	replaced := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		k, _, ok := strings.Cut(trimmed, "=")
		if ok && strings.TrimSpace(k) == key {
			lines[i] = key + "=" + value
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, key+"="+value)
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func stripOuterQuotes(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		if (value[0] == '\'' && value[len(value)-1] == '\'') || (value[0] == '"' && value[len(value)-1] == '"') {
			return strings.TrimSpace(value[1 : len(value)-1])
		}
	}
	return value
}
