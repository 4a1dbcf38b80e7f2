package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads path, expands ${VAR} and ${VAR:-default} references against the
// environment and unmarshals the result. Expansion runs before YAML parsing,
// so a variable may hold any fragment the file itself could spell out.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// expandEnv substitutes every ${VAR} reference in raw. References to unset
// variables without a default are collected and reported together, so a bad
// file names all its problems in one run.
func expandEnv(raw []byte) ([]byte, error) {
	matches := envPattern.FindAllSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return raw, nil
	}

	var (
		out  bytes.Buffer
		errs []error
		last int
	)
	out.Grow(len(raw))
	for _, m := range matches {
		out.Write(raw[last:m[0]])
		last = m[1]

		name := string(raw[m[2]:m[3]])
		if value, ok := os.LookupEnv(name); ok {
			out.WriteString(value)
			continue
		}
		if m[4] >= 0 {
			// Unset, but the reference carries a default.
			out.Write(raw[m[4]:m[5]])
			continue
		}
		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		out.Write(raw[m[0]:m[1]])
	}
	out.Write(raw[last:])

	return out.Bytes(), errors.Join(errs...)
}
