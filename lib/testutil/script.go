// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// fakeScript is the body of a fake extension point. The first line of
// the codes file is the exit status of the first call, and so on; calls
// past the end reuse the last line.
const fakeScript = `#!/bin/sh
dir='%s'
n=$(cat "$dir/count" 2>/dev/null || echo 0)
n=$((n + 1))
echo "$n" > "$dir/count"
: > "$dir/args-$n"
for arg in "$@"; do
  printf '%%s\n' "$arg" >> "$dir/args-$n"
done
for arg in "$@"; do
  case "$arg" in
    --action-file=*|--output-file=*)
      target="${arg#*=}"
      if [ -f "$target" ]; then cp "$target" "$dir/input-$n"; fi
      if [ -f "$dir/output-$n" ]; then cp "$dir/output-$n" "$target"; fi
      ;;
  esac
done
code=$(sed -n "${n}p" "$dir/codes")
if [ -z "$code" ]; then code=$(tail -n 1 "$dir/codes"); fi
exit "$code"
`

// FakeExtensionPoint is a scripted stand-in for an extension-point
// executable.
type FakeExtensionPoint struct {
	// Command runs the fake. Pass it to extension.NewProcess.
	Command []string

	t   *testing.T
	dir string
}

// NewFakeExtensionPoint writes a fake extension point that exits with
// codes in order. At least one code is required.
func NewFakeExtensionPoint(t *testing.T, codes ...int) *FakeExtensionPoint {
	t.Helper()
	if len(codes) == 0 {
		t.Fatal("NewFakeExtensionPoint needs at least one exit code")
	}

	dir := t.TempDir()
	lines := make([]string, len(codes))
	for i, code := range codes {
		lines[i] = strconv.Itoa(code)
	}
	if err := os.WriteFile(filepath.Join(dir, "codes"), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("writing exit codes: %v", err)
	}

	script := filepath.Join(dir, "extension-point.sh")
	if err := os.WriteFile(script, []byte(fmt.Sprintf(fakeScript, dir)), 0o755); err != nil {
		t.Fatalf("writing fake extension point: %v", err)
	}
	return &FakeExtensionPoint{Command: []string{script}, t: t, dir: dir}
}

// SetOutput makes the given 1-based call write content to its
// --action-file or --output-file.
func (f *FakeExtensionPoint) SetOutput(call int, content string) {
	f.t.Helper()
	path := filepath.Join(f.dir, "output-"+strconv.Itoa(call))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		f.t.Fatalf("writing scripted output: %v", err)
	}
}

// Calls returns how many times the fake has run.
func (f *FakeExtensionPoint) Calls() int {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, "count"))
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		f.t.Fatalf("reading call count: %v", err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		f.t.Fatalf("parsing call count %q: %v", data, err)
	}
	return count
}

// Invocations returns the arguments of every call, in order.
func (f *FakeExtensionPoint) Invocations() [][]string {
	f.t.Helper()
	calls := f.Calls()
	invocations := make([][]string, 0, calls)
	for call := 1; call <= calls; call++ {
		data, err := os.ReadFile(filepath.Join(f.dir, "args-"+strconv.Itoa(call)))
		if err != nil {
			f.t.Fatalf("reading arguments of call %d: %v", call, err)
		}
		text := strings.TrimSuffix(string(data), "\n")
		if text == "" {
			invocations = append(invocations, []string{})
			continue
		}
		invocations = append(invocations, strings.Split(text, "\n"))
	}
	return invocations
}

// Input returns the content the file argument held when the given call
// started. ok is false when the file did not exist.
func (f *FakeExtensionPoint) Input(call int) (content string, ok bool) {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, "input-"+strconv.Itoa(call)))
	if os.IsNotExist(err) {
		return "", false
	}
	if err != nil {
		f.t.Fatalf("reading input of call %d: %v", call, err)
	}
	return string(data), true
}
