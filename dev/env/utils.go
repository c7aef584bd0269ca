package devenv

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

const (
	moduleName = "academia-backend"
	// StatePrefix marks a path as relative to the dev state directory.
	StatePrefix = "<dev_state>"
	// StateDirEnv overrides where <dev_state> points, ex. in containers
	// where the source tree is not around.
	StateDirEnv = "ACADEMIA_STATE_DIR"
)

func isWorkspaceRoot(dir string) bool {
	mod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return false
	}
	scanner := bufio.NewScanner(bytes.NewReader(mod))
	for scanner.Scan() {
		name, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "module ")
		if ok {
			return strings.TrimSpace(name) == moduleName
		}
	}
	return false
}

// GetWorkspaceRoot finds the directory holding this module's go.mod by
// walking up from the working directory.
func GetWorkspaceRoot() (string, error) {
	dir, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	for {
		if isWorkspaceRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// StateDir is $ACADEMIA_STATE_DIR when set, <workspace>/dev/.state otherwise.
// It is created if missing.
func StateDir() (string, error) {
	dir := os.Getenv(StateDirEnv)
	if dir == "" {
		root, err := GetWorkspaceRoot()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(root, "dev", ".state")
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", err
	}
	return dir, nil
}

// ResolvePath expands a leading <dev_state> into StateDir, any other path
// is returned as-is.
func ResolvePath(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, StatePrefix)
	if !ok {
		return path, nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, strings.TrimLeft(rest, `/\`)), nil
}
