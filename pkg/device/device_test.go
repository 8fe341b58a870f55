package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/subarch/pkg/errors"
)

func TestCatalog(t *testing.T) {
	want := []string{"ibm_casablanca_7", "ibm_guadalupe_16", "ibmq_london_5", "rigetti_16", "rigetti_8"}
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name   string
		qubits int
		edges  int
	}{
		{"ibmq_london_5", 5, 4},
		{"ibm_casablanca_7", 7, 6},
		{"rigetti_8", 8, 8},
		{"ibm_guadalupe_16", 16, 16},
		{"rigetti_16", 16, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			g, err := d.Graph()
			if err != nil {
				t.Fatalf("Graph: %v", err)
			}
			if g.NodeCount() != tt.qubits {
				t.Errorf("NodeCount() = %d, want %d", g.NodeCount(), tt.qubits)
			}
			if g.EdgeCount() != tt.edges {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.edges)
			}
			if !g.Connected() {
				t.Error("bundled device is disconnected")
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("ibm_nowhere_3")
	if !errors.Is(err, errors.ErrCodeDeviceNotFound) {
		t.Errorf("Lookup() error = %v, want DEVICE_NOT_FOUND", err)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	d, err := Lookup("rigetti_8")
	if err != nil {
		t.Fatal(err)
	}
	d.Coupling[0][0] = 7
	d.Coupling = nil

	again, err := Lookup("rigetti_8")
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Coupling) != 8 {
		t.Errorf("catalog entry modified through a copy: %v", again.Coupling)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		qubits  int
		wantErr errors.Code
	}{
		{
			name:   "explicit qubits",
			data:   "name = \"line_3\"\nqubits = 3\ncoupling = [[0, 1], [1, 2]]\n",
			qubits: 3,
		},
		{
			name:   "derived qubits",
			data:   "name = \"line_3\"\ncoupling = [[0, 1], [2, 1]]\n",
			qubits: 3,
		},
		{
			name:    "no couplings",
			data:    "name = \"empty\"\n",
			wantErr: errors.ErrCodeInvalidDevice,
		},
		{
			name:    "qubit out of range",
			data:    "name = \"bad\"\nqubits = 2\ncoupling = [[0, 2]]\n",
			wantErr: errors.ErrCodeInvalidDevice,
		},
		{
			name:    "not a pair",
			data:    "name = \"bad\"\ncoupling = [[0, 1, 2]]\n",
			wantErr: errors.ErrCodeInvalidDevice,
		},
		{
			name:    "bad name",
			data:    "name = \"Bad Name\"\ncoupling = [[0, 1]]\n",
			wantErr: errors.ErrCodeInvalidDevice,
		},
		{
			name:    "malformed",
			data:    "name = ",
			wantErr: errors.ErrCodeInvalidFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.data))
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if d.Qubits != tt.qubits {
				t.Errorf("Qubits = %d, want %d", d.Qubits, tt.qubits)
			}
		})
	}
}

func TestParseBackend(t *testing.T) {
	data := `{
		"backend_name": "ibmq_london",
		"n_qubits": 5,
		"coupling_map": [[0, 1], [1, 0], [1, 2], [1, 3], [2, 1], [3, 1], [3, 4], [4, 3]],
		"basis_gates": ["cx", "id", "rz", "sx", "x"]
	}`
	d, err := ParseBackend([]byte(data))
	if err != nil {
		t.Fatalf("ParseBackend: %v", err)
	}
	if d.Name != "ibmq_london" {
		t.Errorf("Name = %q", d.Name)
	}
	want := [][]int{{0, 1}, {1, 2}, {1, 3}, {3, 4}}
	if diff := cmp.Diff(want, d.Coupling); diff != "" {
		t.Errorf("Coupling mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseBackend([]byte("{")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("malformed backend error = %v, want INVALID_FORMAT", err)
	}
}

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "tee.toml")
	if err := os.WriteFile(tomlPath, []byte("name = \"tee\"\ncoupling = [[0, 1], [1, 2], [1, 3]]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	jsonPath := filepath.Join(dir, "backend.json")
	if err := os.WriteFile(jsonPath, []byte(`{"backend_name": "pair", "n_qubits": 2, "coupling_map": [[0, 1], [1, 0]]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ref    string
		name   string
		qubits int
	}{
		{"ibmq_london_5", "ibmq_london_5", 5},
		{tomlPath, "tee", 4},
		{jsonPath, "pair", 2},
	}
	for _, tt := range tests {
		d, err := Resolve(tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tt.ref, err)
			continue
		}
		if d.Name != tt.name || d.Qubits != tt.qubits {
			t.Errorf("Resolve(%q) = %s/%d, want %s/%d", tt.ref, d.Name, d.Qubits, tt.name, tt.qubits)
		}
	}

	if _, err := Resolve(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeDeviceNotFound) {
		t.Errorf("Resolve(missing) error = %v, want DEVICE_NOT_FOUND", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}
