package subarch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/errors"
	"github.com/matzehuels/subarch/pkg/poset"
)

// LibraryVersion is the current version of the [Library] document.
const LibraryVersion = 1

// Library is the persisted form of an [Order]. Restoring a library yields
// an order that answers every query exactly like the one it was taken from.
type Library struct {
	Version      int             `json:"version" bson:"version"`
	Device       string          `json:"device,omitempty" bson:"device,omitempty"`
	Arch         GraphDoc        `json:"arch" bson:"arch"`
	Subgraphs    [][]GraphDoc    `json:"subgraphs" bson:"subgraphs"` // indexed by size, [0] is empty
	Order        []RelationEntry `json:"order" bson:"order"`
	Isomorphisms []IsoEntry      `json:"isomorphisms" bson:"isomorphisms"`
	Desirable    []RelationEntry `json:"desirable" bson:"desirable"`
}

// GraphDoc is a graph with its physical-qubit labels and local edges.
type GraphDoc struct {
	Qubits []int    `json:"qubits" bson:"qubits"`
	Edges  [][2]int `json:"edges" bson:"edges"`
}

// RelationEntry lists the classes related to Class.
type RelationEntry struct {
	Class poset.Class   `json:"class" bson:"class"`
	To    []poset.Class `json:"to" bson:"to"`
}

// IsoEntry is one stored witness mapping.
type IsoEntry struct {
	From    poset.Class `json:"from" bson:"from"`
	To      poset.Class `json:"to" bson:"to"`
	Mapping []int       `json:"mapping" bson:"mapping"`
}

// Library returns the persisted form of o. device is an optional name
// recorded for display.
func (o *Order) Library(device string) *Library {
	lib := &Library{
		Version:   LibraryVersion,
		Device:    device,
		Arch:      graphDoc(o.arch),
		Subgraphs: make([][]GraphDoc, len(o.sgs)),
	}
	for n, sgs := range o.sgs {
		lib.Subgraphs[n] = make([]GraphDoc, len(sgs))
		for i, g := range sgs {
			lib.Subgraphs[n][i] = graphDoc(g)
		}
	}
	for _, c := range o.AllClasses() {
		lib.Order = append(lib.Order, RelationEntry{Class: c, To: o.order[c].Sorted()})
		lib.Desirable = append(lib.Desirable, RelationEntry{Class: c, To: o.desirable[c].Sorted()})
		for _, to := range sortedTargets(o.isos[c]) {
			lib.Isomorphisms = append(lib.Isomorphisms, IsoEntry{From: c, To: to, Mapping: o.isos[c][to]})
		}
	}
	return lib
}

func graphDoc(g *arch.Graph) GraphDoc {
	doc := GraphDoc{Qubits: g.Labels(), Edges: make([][2]int, 0, g.EdgeCount())}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, [2]int{e.U, e.V})
	}
	return doc
}

func (d GraphDoc) graph() (*arch.Graph, error) {
	edges := make([]arch.Edge, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = arch.Edge{U: e[0], V: e[1]}
	}
	return arch.FromEdges(d.Qubits, edges)
}

// FromLibraryDoc restores an order from its persisted form and validates it.
// Malformed documents fail with ErrCodeInvalidFormat.
func FromLibraryDoc(lib *Library) (*Order, error) {
	if lib == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "library is empty")
	}
	if lib.Version != LibraryVersion {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported library version %d (want %d)", lib.Version, LibraryVersion)
	}
	o, err := lib.restore()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "malformed library")
	}
	if err := o.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "inconsistent library")
	}
	o.finish()
	return o, nil
}

func (lib *Library) restore() (*Order, error) {
	g, err := lib.Arch.graph()
	if err != nil {
		return nil, fmt.Errorf("arch: %w", err)
	}
	if g.NodeCount() == 0 {
		return nil, arch.ErrEmptyGraph
	}
	o := &Order{
		arch:      g,
		sgs:       make([][]*arch.Graph, len(lib.Subgraphs)),
		order:     make(poset.Relation),
		desirable: make(poset.Relation),
		isos:      make(map[poset.Class]map[poset.Class]arch.Mapping),
	}
	for n, docs := range lib.Subgraphs {
		for i, doc := range docs {
			sg, err := doc.graph()
			if err != nil {
				return nil, fmt.Errorf("subgraph %d.%d: %w", n, i, err)
			}
			o.sgs[n] = append(o.sgs[n], sg)
		}
	}
	if len(o.sgs) != g.NodeCount()+1 {
		return nil, fmt.Errorf("subgraph table has %d sizes for %d qubits", len(o.sgs), g.NodeCount())
	}
	for _, c := range o.AllClasses() {
		o.order.Init(c)
		o.desirable.Init(c)
		o.isos[c] = make(map[poset.Class]arch.Mapping)
	}

	if err := fillRelation(o.order, lib.Order); err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}
	if err := fillRelation(o.desirable, lib.Desirable); err != nil {
		return nil, fmt.Errorf("desirable: %w", err)
	}
	for _, e := range lib.Isomorphisms {
		m, ok := o.isos[e.From]
		if !ok {
			return nil, fmt.Errorf("isomorphism: %w: %s", poset.ErrUnknownClass, e.From)
		}
		if _, ok := o.isos[e.To]; !ok {
			return nil, fmt.Errorf("isomorphism: %w: %s", poset.ErrUnknownClass, e.To)
		}
		m[e.To] = arch.Mapping(e.Mapping).Clone()
	}
	return o, nil
}

func fillRelation(r poset.Relation, entries []RelationEntry) error {
	for _, e := range entries {
		for _, to := range e.To {
			if err := r.Add(e.Class, to); err != nil {
				return err
			}
		}
	}
	return nil
}

// Marshal encodes o as a JSON library document.
func (o *Order) Marshal(device string) ([]byte, error) {
	data, err := json.Marshal(o.Library(device))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode library")
	}
	return data, nil
}

// Unmarshal decodes and validates a JSON library document.
func Unmarshal(data []byte) (*Order, error) {
	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode library")
	}
	return FromLibraryDoc(&lib)
}

// WriteLibrary writes o as JSON to w.
func (o *Order) WriteLibrary(w io.Writer, device string) error {
	if err := json.NewEncoder(w).Encode(o.Library(device)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write library")
	}
	return nil
}

// ReadLibrary reads and validates a JSON library from r.
func ReadLibrary(r io.Reader) (*Order, error) {
	var lib Library
	if err := json.NewDecoder(r).Decode(&lib); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode library")
	}
	return FromLibraryDoc(&lib)
}

// StoreLibrary writes o to path, replacing any existing file.
func (o *Order) StoreLibrary(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create library %s", path)
	}
	if err := o.WriteLibrary(f, ""); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "close library %s", path)
	}
	return nil
}

// FromLibrary restores an order stored with [Order.StoreLibrary]. A missing
// file fails with ErrCodeFileNotFound; nothing is partially constructed.
func FromLibrary(path string) (*Order, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "library %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open library %s", path)
	}
	defer f.Close()
	return ReadLibrary(f)
}
