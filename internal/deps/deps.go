package deps

import (
	"os/exec"
	"runtime"
	"strings"
)

type Dependency struct {
	Name       string
	Command    string
	InstallCmd map[string]string
}

type MissingDep struct {
	Dependency
}

var dependencies = []Dependency{
	{
		Name:    "git",
		Command: "git",
		InstallCmd: map[string]string{
			"darwin": "brew install git",
			"linux":  "sudo apt install git",
		},
	},
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

func Check() []MissingDep {
	missing := []MissingDep{}
	for _, dep := range dependencies {
		if _, err := lookPath(dep.Command); err != nil {
			missing = append(missing, MissingDep{dep})
		}
	}
	return missing
}

func InstallHint(dep MissingDep) string {
	if cmd, ok := dep.InstallCmd[runtime.GOOS]; ok {
		return cmd
	}
	return "install " + dep.Name + " via your package manager"
}

// Describe formats missing dependencies as one line each with an install hint.
func Describe(missing []MissingDep) string {
	lines := make([]string, 0, len(missing))
	for _, m := range missing {
		lines = append(lines, "missing "+m.Name+": "+InstallHint(m))
	}
	return strings.Join(lines, "\n")
}
