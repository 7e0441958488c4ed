// Package installer dispatches a resolved package to the upstream-ecosystem
// handler named by its PURL type (spec.md §4.6), running each handler with
// an explicit Workspace rather than mutating process-global cwd/env state
// (spec.md §9's "Shared process state" redesign note).
package installer

import (
	"fmt"
	"os"
)

// Workspace is the explicit (cwd, env) pair every installer handler runs
// with. Handlers never call os.Chdir or mutate os.Environ directly; they
// build *exec.Cmd values with Dir and Env set from this struct.
type Workspace struct {
	Dir string
	Env []string
}

// NewWorkspace builds a Workspace rooted at dir, with the current process
// environment plus PWD=dir, per spec.md §4.6 ("the environment augmented
// with PWD=pkg.dir").
func NewWorkspace(dir string) *Workspace {
	return &Workspace{Dir: dir, Env: setEnv(os.Environ(), "PWD", dir)}
}

// WithEnv returns a copy of ws with key=value set (or replaced) in Env.
func (ws *Workspace) WithEnv(key, value string) *Workspace {
	return &Workspace{Dir: ws.Dir, Env: setEnv(append([]string(nil), ws.Env...), key, value)}
}

// PrependPath returns a copy of ws with dir prepended to PATH.
func (ws *Workspace) PrependPath(dir string) *Workspace {
	path := "PATH"
	for _, kv := range ws.Env {
		if len(kv) > 5 && kv[:5] == "PATH=" {
			return ws.WithEnv(path, dir+string(os.PathListSeparator)+kv[5:])
		}
	}
	return ws.WithEnv(path, dir)
}

func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if len(kv) >= len(prefix) && kv[:len(prefix)] == prefix {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, fmt.Sprintf("%s=%s", key, value))
}
