// Package device describes quantum devices by their coupling maps.
//
// Devices come from three places: the bundled catalog (see [Names] and
// [Lookup]), TOML device files, and vendor backend configuration documents
// in JSON. All of them resolve to a [Device], whose [Device.Graph] feeds the
// subarchitecture builder.
//
// A TOML device file looks like:
//
//	name = "ibmq_london_5"
//	vendor = "ibm"
//	qubits = 5
//	coupling = [[0, 1], [1, 2], [1, 3], [3, 4]]
package device

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/errors"
)

// Device is a named coupling map.
type Device struct {
	Name        string  `toml:"name" json:"name"`
	Vendor      string  `toml:"vendor,omitempty" json:"vendor,omitempty"`
	Description string  `toml:"description,omitempty" json:"description,omitempty"`
	Qubits      int     `toml:"qubits" json:"qubits"`
	Coupling    [][]int `toml:"coupling" json:"coupling"`
}

// Validate checks the name and that every coupling joins two qubits in
// range. Qubits defaults to max index + 1 when zero.
func (d *Device) Validate() error {
	if err := errors.ValidateDeviceName(d.Name); err != nil {
		return err
	}
	if len(d.Coupling) == 0 {
		return errors.New(errors.ErrCodeInvalidDevice, "device %s has no couplings", d.Name)
	}
	maxQubit := -1
	for _, c := range d.Coupling {
		if len(c) != 2 {
			return errors.New(errors.ErrCodeInvalidDevice, "device %s: coupling %v is not a pair", d.Name, c)
		}
		if c[0] < 0 || c[1] < 0 {
			return errors.New(errors.ErrCodeInvalidDevice, "device %s: negative qubit in %v", d.Name, c)
		}
		maxQubit = max(maxQubit, c[0], c[1])
	}
	if d.Qubits == 0 {
		d.Qubits = maxQubit + 1
	}
	if maxQubit >= d.Qubits {
		return errors.New(errors.ErrCodeInvalidDevice, "device %s: qubit %d out of range for %d qubits", d.Name, maxQubit, d.Qubits)
	}
	return nil
}

// Pairs returns the coupling map as [arch.Pair] values.
func (d *Device) Pairs() []arch.Pair {
	out := make([]arch.Pair, len(d.Coupling))
	for i, c := range d.Coupling {
		out[i] = arch.Pair{c[0], c[1]}
	}
	return out
}

// Graph returns the device coupling graph with d.Qubits vertices. Qubits
// without couplings are isolated vertices.
func (d *Device) Graph() (*arch.Graph, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	g := arch.New(d.Qubits)
	for _, c := range d.Coupling {
		if c[0] == c[1] {
			continue
		}
		if err := g.AddEdge(c[0], c[1]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDevice, err, "device %s", d.Name)
		}
	}
	return g, nil
}

// =============================================================================
// Device files
// =============================================================================

// Parse decodes a TOML device description.
func Parse(data []byte) (*Device, error) {
	var d Device
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode device")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads a device file. Files ending in .json are decoded as backend
// configurations, everything else as TOML.
func Load(path string) (*Device, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "device file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read device file %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseBackend(data)
	}
	return Parse(data)
}

// Resolve returns the bundled device called ref, or loads ref as a file when
// no such device exists.
func Resolve(ref string) (*Device, error) {
	if d, err := Lookup(ref); err == nil {
		return d, nil
	}
	if _, err := os.Stat(ref); err != nil {
		return nil, errors.New(errors.ErrCodeDeviceNotFound, "unknown device %q (known: %s)", ref, strings.Join(Names(), ", "))
	}
	return Load(ref)
}

// =============================================================================
// Backend configurations
// =============================================================================

// backendConfig is the subset of a vendor backend configuration that
// describes connectivity. Gate and calibration data is ignored.
type backendConfig struct {
	BackendName string  `json:"backend_name"`
	NQubits     int     `json:"n_qubits"`
	CouplingMap [][]int `json:"coupling_map"`
}

// ParseBackend decodes a backend configuration document. The coupling map
// may list both directions of each coupling.
func ParseBackend(data []byte) (*Device, error) {
	var cfg backendConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode backend configuration")
	}
	d := &Device{
		Name:     strings.ToLower(cfg.BackendName),
		Qubits:   cfg.NQubits,
		Coupling: dedupe(cfg.CouplingMap),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// dedupe drops reversed duplicates, keeping the first direction seen.
func dedupe(pairs [][]int) [][]int {
	seen := make(map[[2]int]bool, len(pairs))
	out := make([][]int, 0, len(pairs))
	for _, p := range pairs {
		if len(p) != 2 {
			out = append(out, p)
			continue
		}
		key := [2]int{min(p[0], p[1]), max(p[0], p[1])}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// =============================================================================
// Bundled catalog
// =============================================================================

//go:embed catalog/*.toml
var catalogFS embed.FS

var (
	catalog     map[string]*Device
	catalogErr  error
	catalogOnce sync.Once
)

func loadCatalog() (map[string]*Device, error) {
	catalogOnce.Do(func() {
		catalog = make(map[string]*Device)
		catalogErr = fs.WalkDir(catalogFS, "catalog", func(path string, e fs.DirEntry, err error) error {
			if err != nil || e.IsDir() {
				return err
			}
			data, err := catalogFS.ReadFile(path)
			if err != nil {
				return err
			}
			d, err := Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			catalog[d.Name] = d
			return nil
		})
	})
	return catalog, catalogErr
}

// Names returns the bundled device names in ascending order.
func Names() []string {
	c, _ := loadCatalog()
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a copy of the bundled device called name.
func Lookup(name string) (*Device, error) {
	c, err := loadCatalog()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load device catalog")
	}
	d, ok := c[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeDeviceNotFound, "unknown device %q", name)
	}
	cp := *d
	cp.Coupling = slices.Clone(d.Coupling)
	return &cp, nil
}

// All returns copies of every bundled device, sorted by name.
func All() []*Device {
	var out []*Device
	for _, name := range Names() {
		if d, err := Lookup(name); err == nil {
			out = append(out, d)
		}
	}
	return out
}
