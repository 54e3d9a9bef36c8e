package probe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/velotools/velocheck/internal/schema"
)

var (
	errDefinitionNameRequired   = errors.New("endpoint name is required")
	errDefinitionMethodRequired = errors.New("endpoint method is required")
	errDefinitionSchemaRequired = errors.New("endpoint schema must declare at least one field")
	errFieldNameRequired        = errors.New("schema field name is required")
	errObjectSchemaRequired     = errors.New("object field needs a nested schema")
	errListElemRequired         = errors.New("list field needs an elem spec")
)

// Definition is the YAML form of an endpoint declaration. Fields are
// required unless marked optional, matching how the orchestrator's own
// models treat presence.
//
//	name: gateways
//	method: enterprise/getEnterpriseGateways
//	params:
//	  enterpriseId: "7"
//	list: true
//	schema:
//	  fields:
//	    - name: id
//	      type: number
//	    - name: description
//	      type: string
//	      nullable: true
//	    - name: site
//	      type: object
//	      optional: true
//	      schema:
//	        fields:
//	          - name: id
//	            type: number
type Definition struct {
	Name        string            `yaml:"name"`
	Method      string            `yaml:"method"`
	Description string            `yaml:"description"`
	Params      map[string]string `yaml:"params"`
	List        bool              `yaml:"list"`
	Schema      DefinitionSchema  `yaml:"schema"`
}

// DefinitionSchema mirrors schema.Schema for YAML decoding.
type DefinitionSchema struct {
	Name   string             `yaml:"name"`
	Fields []*DefinitionField `yaml:"fields"`
}

// DefinitionField mirrors schema.Field for YAML decoding.
type DefinitionField struct {
	Name     string            `yaml:"name"`
	Type     string            `yaml:"type"`
	Optional bool              `yaml:"optional"`
	Nullable bool              `yaml:"nullable"`
	Enum     []string          `yaml:"enum,omitempty"`
	Schema   *DefinitionSchema `yaml:"schema,omitempty"` // object fields
	Elem     *DefinitionField  `yaml:"elem,omitempty"`   // list fields; elem name is ignored
}

// Endpoint converts the definition into a registrable endpoint. Structural
// problems in the YAML are caught here; deeper well-formedness (unknown
// types, cycles) is still checked when the registry freezes.
func (d *Definition) Endpoint() (Endpoint, error) {
	sch, err := buildSchema(&d.Schema, d.Name)
	if err != nil {
		return Endpoint{}, err
	}

	return Endpoint{
		Name:        d.Name,
		Method:      d.Method,
		Params:      d.Params,
		Expect:      sch,
		List:        d.List,
		Description: d.Description,
	}, nil
}

// Loader reads endpoint definitions from YAML files.
type Loader interface {
	// Load reads and validates a single definition file.
	Load(path string) (*Definition, error)

	// LoadAll reads every .yaml/.yml file in the loader's directory, in
	// filename order so registration order is stable across runs.
	LoadAll() ([]*Definition, error)
}

type loader struct {
	dir string
	log logrus.FieldLogger
}

// NewLoader creates an endpoint definition loader for a directory.
func NewLoader(log logrus.FieldLogger, dir string) Loader {
	return &loader{
		dir: dir,
		log: log.WithField("component", "definition_loader"),
	}
}

// Load reads and validates a single definition file.
func (l *loader) Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: reading operator-supplied definition files
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	if err := validateDefinition(&def); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}

	return &def, nil
}

// LoadAll reads every definition in the loader's directory.
func (l *loader) LoadAll() ([]*Definition, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", l.dir, err)
	}

	var files []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, filepath.Join(l.dir, name))
		}
	}

	sort.Strings(files)

	l.log.WithFields(logrus.Fields{
		"dir":   l.dir,
		"files": len(files),
	}).Debug("loading endpoint definitions")

	definitions := make([]*Definition, 0, len(files))

	for _, path := range files {
		def, err := l.Load(path)
		if err != nil {
			return nil, err
		}

		definitions = append(definitions, def)
	}

	return definitions, nil
}

func validateDefinition(def *Definition) error {
	if def.Name == "" {
		return errDefinitionNameRequired
	}

	if def.Method == "" {
		return fmt.Errorf("%w: %s", errDefinitionMethodRequired, def.Name)
	}

	if len(def.Schema.Fields) == 0 {
		return fmt.Errorf("%w: %s", errDefinitionSchemaRequired, def.Name)
	}

	return nil
}

func buildSchema(ds *DefinitionSchema, fallbackName string) (*schema.Schema, error) {
	name := ds.Name
	if name == "" {
		name = fallbackName
	}

	fields := make([]schema.Field, 0, len(ds.Fields))

	for _, df := range ds.Fields {
		if df.Name == "" {
			return nil, fmt.Errorf("%w: in schema %s", errFieldNameRequired, name)
		}

		spec, err := buildSpec(df, name+"."+df.Name)
		if err != nil {
			return nil, err
		}

		fields = append(fields, schema.Field{Name: df.Name, Spec: *spec})
	}

	return schema.New(name, fields), nil
}

func buildSpec(df *DefinitionField, at string) (*schema.FieldSpec, error) {
	spec := &schema.FieldSpec{
		Type:     schema.Type(df.Type),
		Required: !df.Optional,
		Nullable: df.Nullable,
		Enum:     df.Enum,
	}

	switch spec.Type {
	case schema.TypeObject:
		if df.Schema == nil {
			return nil, fmt.Errorf("%w: %s", errObjectSchemaRequired, at)
		}

		nested, err := buildSchema(df.Schema, at)
		if err != nil {
			return nil, err
		}

		spec.Object = nested

	case schema.TypeList:
		if df.Elem == nil {
			return nil, fmt.Errorf("%w: %s", errListElemRequired, at)
		}

		elem, err := buildSpec(df.Elem, at+"[]")
		if err != nil {
			return nil, err
		}

		spec.Elem = elem
	}

	return spec, nil
}
