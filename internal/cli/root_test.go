package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/subarch/pkg/errors"
)

// run executes the CLI with args and returns what the command wrote to
// its output stream.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"build", "cache", "candidates", "completion", "covering", "devices", "pick", "render", "serve"}
	var got []string
	for _, cmd := range root.Commands() {
		if cmd.Name() == "help" {
			continue
		}
		got = append(got, cmd.Name())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("subcommands (-want +got):\n%s", diff)
	}
}

func TestDevicesJSON(t *testing.T) {
	out, err := run(t, "devices", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var devices []struct {
		Name   string `json:"name"`
		Qubits int    `json:"qubits"`
	}
	if err := json.Unmarshal([]byte(out), &devices); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	found := false
	for _, d := range devices {
		if d.Name == "ibmq_london_5" && d.Qubits == 5 {
			found = true
		}
	}
	if !found {
		t.Errorf("ibmq_london_5 missing: %s", out)
	}
}

func decodeQuery(t *testing.T, out string) queryResult {
	t.Helper()
	var res queryResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return res
}

func classNames(res queryResult) []string {
	var out []string
	for _, c := range res.Classes {
		out = append(out, c.Class)
	}
	return out
}

func TestCandidatesCommand(t *testing.T) {
	out, err := run(t, "--no-cache", "candidates", "ibmq_london_5", "-k", "3", "--json")
	if err != nil {
		t.Fatal(err)
	}
	res := decodeQuery(t, out)
	if diff := cmp.Diff([]string{"3.0"}, classNames(res)); diff != "" {
		t.Errorf("classes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, res.Classes[0].Qubits); diff != "" {
		t.Errorf("qubits (-want +got):\n%s", diff)
	}
}

func TestCoveringCommand(t *testing.T) {
	out, err := run(t, "--no-cache", "covering", "ibmq_london_5", "-k", "4", "-s", "2", "--json")
	if err != nil {
		t.Fatal(err)
	}
	res := decodeQuery(t, out)
	if diff := cmp.Diff([]string{"4.0", "4.1"}, classNames(res)); diff != "" {
		t.Errorf("classes (-want +got):\n%s", diff)
	}
	if res.Size != 2 {
		t.Errorf("size = %d", res.Size)
	}
}

func TestBuildLibraryRoundTrip(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "london.json")
	if _, err := run(t, "--no-cache", "build", "ibmq_london_5", "-o", lib, "--json"); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--no-cache", "candidates", "--library", lib, "-k", "4", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"5.0"}, classNames(decodeQuery(t, out))); diff != "" {
		t.Errorf("classes (-want +got):\n%s", diff)
	}
}

func TestBuildUsesCache(t *testing.T) {
	dir := t.TempDir()
	type stats struct {
		Cached bool `json:"cached"`
	}
	for i, want := range []bool{false, true} {
		out, err := run(t, "--cache", "file", "--cache-url", dir, "build", "rigetti_8", "--json")
		if err != nil {
			t.Fatal(err)
		}
		var st stats
		if err := json.Unmarshal([]byte(out), &st); err != nil {
			t.Fatal(err)
		}
		if st.Cached != want {
			t.Errorf("run %d cached = %v, want %v", i, st.Cached, want)
		}
	}
}

func TestRenderToStdout(t *testing.T) {
	out, err := run(t, "--no-cache", "render", "ibmq_london_5", "-f", "dot", "-o", "-", "-k", "3")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Errorf("render output is not DOT: %.40q", out)
	}
}

func TestRenderFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "london")
	if _, err := run(t, "--no-cache", "render", "ibmq_london_5", "-t", "order,device", "-f", "dot", "-o", base); err != nil {
		t.Fatal(err)
	}
	for _, kind := range []string{"order", "device"} {
		path := base + "_" + kind + ".dot"
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no device", []string{"--no-cache", "candidates", "-k", "2"}, errors.ErrCodeInvalidInput},
		{"zero qubits", []string{"--no-cache", "candidates", "ibmq_london_5", "-k", "0"}, errors.ErrCodeOutOfRange},
		{"too many qubits", []string{"--no-cache", "candidates", "ibmq_london_5", "-k", "6"}, errors.ErrCodeOutOfRange},
		{"unknown device", []string{"--no-cache", "build", "nowhere_3"}, errors.ErrCodeDeviceNotFound},
		{"bad format", []string{"--no-cache", "render", "ibmq_london_5", "-f", "gif"}, errors.ErrCodeInvalidInput},
		{"bad backend", []string{"--cache", "etcd", "build", "ibmq_london_5"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := run(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("completion %s output does not mention %s", shell, appName)
		}
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh: want error")
	}

	names, _ := completeDevices(nil, nil, "")
	found := false
	for _, n := range names {
		found = found || n == "ibm_guadalupe_16"
	}
	if !found {
		t.Errorf("completeDevices() = %v", names)
	}
}
