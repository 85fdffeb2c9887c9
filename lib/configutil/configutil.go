package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/titanous/json5"
)

// LocalName returns the path of the local override file for a config,
// "config.json5" -> "config.local.json5".
func LocalName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func readInto[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a json5 configuration file, merging (in increasing
// priority):
//  1. defaults
//  2. <name>.<ext>
//  3. <name>.local.<ext>
//  4. environment variables named by `env` struct tags
//
// A missing file is not an error, the defaults and environment are still
// applied.
func ReadConfig[T any](name string, defaults T) (T, error) {
	out := defaults

	var base T
	found, err := readInto(name, &base)
	if err != nil {
		return out, err
	}
	if found {
		err = mergo.Merge(&out, base, mergo.WithOverride)
		if err != nil {
			return out, err
		}
	}

	localPath := LocalName(name)
	var override T
	found, err = readInto(localPath, &override)
	if err != nil {
		return out, err
	}
	if found {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("merging config with local overrides", "local", localPath)
	}

	err = env.Parse(&out)
	if err != nil {
		return out, fmt.Errorf("read environment: %w", err)
	}

	return out, nil
}
