package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// EnvironmentVar selects an extra config layer, ex. ACADEMIA_ENV=production
// reads config.production.json5 on top of config.json5.
const EnvironmentVar = "ACADEMIA_ENV"

// layers returns the files making up the config `name`, lowest priority first.
func layers(name string) []string {
	ext := filepath.Ext(name)
	prefix := strings.TrimSuffix(name, ext)

	out := []string{name}
	if env := strings.TrimSpace(os.Getenv(EnvironmentVar)); env != "" {
		out = append(out, fmt.Sprintf("%s.%s%s", prefix, env, ext))
	}
	return append(out, prefix+".local"+ext)
}

func readLayer[T any](path string) (T, bool, error) {
	var out T
	buff, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(buff) == 0) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if err := json5.Unmarshal(buff, &out); err != nil {
		return out, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, true, nil
}

// ReadConfig reads the json5 config `name` and merges the layers found next
// to it over each other:
//  1. <name>.<ext>
//  2. <name>.<ACADEMIA_ENV>.<ext>
//  3. <name>.local.<ext>
//
// It returns os.ErrNotExist when none of the layers exist.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found := false

	for _, path := range layers(name) {
		layer, ok, err := readLayer[T](path)
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		if !found {
			out = layer
			found = true
			continue
		}
		if err := mergo.Merge(&out, layer, mergo.WithOverride); err != nil {
			return out, fmt.Errorf("merge %s: %w", path, err)
		}
		slog.Debug("merged config layer", "path", path)
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively walks from the working directory up to the filesystem
// root and returns the first config named `name` it finds.
func ReadRecursively[T any](name string) (T, error) {
	var empty T

	current, err := os.Getwd()
	if err != nil {
		return empty, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return empty, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return empty, os.ErrNotExist
		}
		current = parent
	}
}
