// Package execx provides an abstraction over exec.Command so external query
// tools can be mocked in tests.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner runs external commands and resolves binaries on the search path.
type Runner interface {
	// Output runs a command and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath resolves name to a full binary path.
	LookPath(name string) (string, error)
}

// System is the production Runner over os/exec.
type System struct{}

func (System) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("running %s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("running %s: %w", name, err)
	}

	return stdout.Bytes(), nil
}

func (System) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Fake is a scripted Runner for tests. Outputs maps a command line (binary
// name joined with its args by spaces) to canned stdout; Tools lists binaries
// considered installed.
type Fake struct {
	Outputs map[string]string
	Errs    map[string]error
	Tools   []string
	Calls   []string
}

func (f *Fake) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.Calls = append(f.Calls, key)

	if err, ok := f.Errs[key]; ok {
		return nil, err
	}
	out, ok := f.Outputs[key]
	if !ok {
		return nil, fmt.Errorf("running %s: %w", name, errors.New("exit status 1"))
	}

	return []byte(out), nil
}

func (f *Fake) LookPath(name string) (string, error) {
	for _, t := range f.Tools {
		if t == name {
			return "/usr/bin/" + name, nil
		}
	}

	return "", fmt.Errorf("%s: executable file not found in $PATH", name)
}
