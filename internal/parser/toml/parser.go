// Package toml provides a parser for the pganno TOML model format. It reads
// a logical model definition (entities, properties, index definitions, and
// model-level type declarations) from a .toml file and resolves it into the
// read-only model views the annotation providers operate on.
//
// The parser is also the validation boundary: the annotation providers rely
// on co-mapped logical elements agreeing on every facet they read off the
// first of them, so any divergence between entities sharing a table, or
// properties sharing a column, is rejected here as a parse error.
package toml

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"pganno/internal/dialect/postgres"
	"pganno/internal/model"
)

// modelFile is the top-level TOML document.
type modelFile struct {
	Model    tomlModel    `toml:"model"`
	Entities []tomlEntity `toml:"entities"`
}

// tomlModel maps [model].
type tomlModel struct {
	Name             string          `toml:"name"`
	DefaultCollation string          `toml:"default_collation"`
	Extensions       []string        `toml:"extensions"`
	Enums            []tomlEnum      `toml:"enums"`
	Ranges           []tomlRange     `toml:"ranges"`
	Collations       []tomlCollation `toml:"collations"`
}

// tomlEnum maps [[model.enums]].
type tomlEnum struct {
	Name   string   `toml:"name"`
	Labels []string `toml:"labels"`
}

// tomlRange maps [[model.ranges]].
type tomlRange struct {
	Name    string `toml:"name"`
	Subtype string `toml:"subtype"`
}

// tomlCollation maps [[model.collations]].
type tomlCollation struct {
	Name   string `toml:"name"`
	Locale string `toml:"locale"`
}

// tomlEntity maps [[entities]].
type tomlEntity struct {
	Name       string         `toml:"name"`
	Table      string         `toml:"table"`
	Schema     string         `toml:"schema"`
	Unlogged   bool           `toml:"unlogged"`
	Interleave any            `toml:"interleave_in_parent"`
	Storage    map[string]any `toml:"storage_parameters"`
	Properties []tomlProperty `toml:"properties"`
	Indexes    []tomlIndex    `toml:"indexes"`
}

// tomlProperty maps [[entities.properties]].
type tomlProperty struct {
	Name            string   `toml:"name"`
	Column          string   `toml:"column"`
	ValueGeneration string   `toml:"value_generation"`
	IdentityOptions string   `toml:"identity_options"`
	Collation       string   `toml:"collation"`
	TsVectorConfig  string   `toml:"tsvector_config"`
	TsVectorSources []string `toml:"tsvector_sources"`
	Compression     string   `toml:"compression"`
}

// tomlIndex maps [[entities.indexes]].
type tomlIndex struct {
	Name            string   `toml:"name"`
	Properties      []string `toml:"properties"`
	Collations      []string `toml:"collations"`
	Method          string   `toml:"method"`
	OperatorClasses []string `toml:"operator_classes"`
	SortOrders      []string `toml:"sort_orders"`
	NullOrders      []string `toml:"null_orders"`
	TsVectorConfig  string   `toml:"tsvector_config"`
	Include         []string `toml:"include"`
	Concurrently    *bool    `toml:"concurrently"`
}

// Parser reads pganno TOML model files.
type Parser struct{}

// NewParser creates a new TOML model parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at the given path and parses it as a TOML model.
func (p *Parser) ParseFile(path string) (*model.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toml: open file %q: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads TOML content from reader and returns the resolved model views.
func (p *Parser) Parse(r io.Reader) (*model.Model, error) {
	var mf modelFile
	if _, err := toml.NewDecoder(r).Decode(&mf); err != nil {
		return nil, fmt.Errorf("toml: decode error: %w", err)
	}

	return newConverter(&mf).convert()
}

type converter struct {
	mf       *modelFile
	out      *model.Model
	tables   map[string]*model.Table
	mappings map[string]*model.TableMapping // keyed by entity name
}

func newConverter(mf *modelFile) *converter {
	return &converter{
		mf:       mf,
		out:      &model.Model{},
		tables:   make(map[string]*model.Table),
		mappings: make(map[string]*model.TableMapping, len(mf.Entities)),
	}
}

func (c *converter) convert() (*model.Model, error) {
	c.out.DefaultCollation = c.mf.Model.DefaultCollation

	if err := c.convertModelAnnotations(); err != nil {
		return nil, err
	}
	if err := c.convertEntities(); err != nil {
		return nil, err
	}
	if err := c.convertIndexes(); err != nil {
		return nil, err
	}
	return c.out, nil
}

// convertModelAnnotations turns the declared extensions, enum types, range
// types, and collation definitions into the prefixed model annotations the
// providers filter on, preserving declaration order within each group.
func (c *converter) convertModelAnnotations() error {
	seen := make(map[string]bool)
	add := func(name string, value any) error {
		if seen[name] {
			return fmt.Errorf("toml: duplicate model annotation %q", name)
		}
		seen[name] = true
		c.out.Annotations = append(c.out.Annotations, model.Annotation{Name: name, Value: value})
		return nil
	}

	for _, ext := range c.mf.Model.Extensions {
		if ext == "" {
			return fmt.Errorf("toml: extension name is required")
		}
		if err := add(postgres.ExtensionPrefix+ext, true); err != nil {
			return err
		}
	}
	for _, e := range c.mf.Model.Enums {
		if e.Name == "" {
			return fmt.Errorf("toml: enum name is required")
		}
		if err := add(postgres.EnumPrefix+e.Name, e.Labels); err != nil {
			return err
		}
	}
	for _, r := range c.mf.Model.Ranges {
		if r.Name == "" {
			return fmt.Errorf("toml: range name is required")
		}
		if err := add(postgres.RangePrefix+r.Name, r.Subtype); err != nil {
			return err
		}
	}
	for _, col := range c.mf.Model.Collations {
		if col.Name == "" {
			return fmt.Errorf("toml: collation name is required")
		}
		if err := add(postgres.CollationDefinitionPrefix+col.Name, col.Locale); err != nil {
			return err
		}
	}
	return nil
}

// storageAnnotations converts the storage_parameters table of an entity into
// prefixed entity annotations. TOML tables carry no declaration order, so the
// parameters are sorted by name to keep extraction output deterministic.
func storageAnnotations(params map[string]any) []model.Annotation {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	anns := make([]model.Annotation, 0, len(keys))
	for _, k := range keys {
		anns = append(anns, model.Annotation{Name: postgres.StorageParameterPrefix + k, Value: params[k]})
	}
	return anns
}
