// Command gen-version writes a Go file recording the git description of the
// source tree, e.g.
//
//	go run ./cmd/gen-version -o cmd/ndimg/version.go
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/alecthomas/kong"
)

const code = `// Code generated by gen-version. DO NOT EDIT.

package %s

func init() {
	gitVersion = %q
}
`

type args struct {
	Output  string `short:"o" required:"" help:"Go file to write"`
	Package string `default:"main" help:"Package clause of the generated file"`
}

// describe returns the nearest tag plus an abbreviated commit, or "notag".
func describe() string {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to find git command, alter PATH? %v\n", err)
		return "notag"
	}
	out, err := exec.Command(gitPath, "describe", "--abbrev=5", "--tags").Output()
	if err != nil {
		return "notag"
	}
	return strings.TrimSpace(string(out))
}

func main() {
	var a args
	kong.Parse(&a, kong.Name("gen-version"), kong.Description("Generate Go code with source version info."))

	goCode := fmt.Sprintf(code, a.Package, describe())
	if err := os.WriteFile(a.Output, []byte(goCode), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error saving go code: %v\n", err)
		os.Exit(1)
	}
}
