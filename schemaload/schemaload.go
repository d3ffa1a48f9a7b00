// Package schemaload populates a Registry from declarative YAML or JSON
// schema documents. It is the boundary through which externally produced
// schema definitions reach the engine; nothing in the core depends on it.
package schemaload

import (
	"fmt"
	"regexp"
	"sort"

	json "github.com/goccy/go-json"
	yaml "gopkg.in/yaml.v3"

	skematic "github.com/skematic/skematic"
	"github.com/skematic/skematic/transform"
)

// Document is the top-level schema file shape:
//
//	schemas:
//	  User:
//	    properties:
//	      id:   {type: number}
//	      name: {type: string, constraints: {minLength: 1}}
//	  Status:
//	    alias:
//	      type: union
//	      members:
//	        - {type: literal, value: active}
//	        - {type: literal, value: disabled}
type Document struct {
	Schemas map[string]SchemaNode `yaml:"schemas" json:"schemas"`
}

// SchemaNode declares either an object schema (Properties) or an alias
// wrapping a single non-object descriptor.
type SchemaNode struct {
	Properties map[string]*TypeNode `yaml:"properties" json:"properties"`
	Alias      *TypeNode            `yaml:"alias" json:"alias"`
}

// TypeNode is one descriptor in the document tree.
type TypeNode struct {
	Type          string               `yaml:"type" json:"type"`
	Value         any                  `yaml:"value" json:"value"`
	Items         *TypeNode            `yaml:"items" json:"items"`
	Elements      []*TypeNode          `yaml:"elements" json:"elements"`
	Members       []*TypeNode          `yaml:"members" json:"members"`
	Properties    map[string]*TypeNode `yaml:"properties" json:"properties"`
	Ref           string               `yaml:"ref" json:"ref"`
	Discriminator string               `yaml:"discriminator" json:"discriminator"`
	Variants      map[string]*TypeNode `yaml:"variants" json:"variants"`
	Nullable      bool                 `yaml:"nullable" json:"nullable"`
	Optional      bool                 `yaml:"optional" json:"optional"`
	ReadOnly      bool                 `yaml:"readonly" json:"readonly"`
	AutoTransform bool                 `yaml:"autoTransform" json:"autoTransform"`
	Constraints   *ConstraintsNode     `yaml:"constraints" json:"constraints"`
}

// ConstraintsNode mirrors skematic.Constraints in document form.
type ConstraintsNode struct {
	MinLength *int     `yaml:"minLength" json:"minLength"`
	MaxLength *int     `yaml:"maxLength" json:"maxLength"`
	Min       *float64 `yaml:"min" json:"min"`
	Max       *float64 `yaml:"max" json:"max"`
	Pattern   string   `yaml:"pattern" json:"pattern"`
}

// LoadYAML parses a YAML schema document and registers every schema it
// declares.
func LoadYAML(data []byte, reg *skematic.Registry) error {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("schemaload: invalid YAML: %w", err)
	}
	return apply(&doc, reg)
}

// LoadJSON parses a JSON schema document and registers every schema it
// declares.
func LoadJSON(data []byte, reg *skematic.Registry) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("schemaload: invalid JSON: %w", err)
	}
	return apply(&doc, reg)
}

func apply(doc *Document, reg *skematic.Registry) error {
	names := make([]string, 0, len(doc.Schemas))
	for name := range doc.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sn := doc.Schemas[name]
		switch {
		case sn.Alias != nil:
			d, err := buildDescriptor(sn.Alias)
			if err != nil {
				return fmt.Errorf("schemaload: schema %q: %w", name, err)
			}
			reg.RegisterAlias(name, d)
		case sn.Properties != nil:
			props, err := buildProperties(sn.Properties)
			if err != nil {
				return fmt.Errorf("schemaload: schema %q: %w", name, err)
			}
			reg.Register(name, props)
		default:
			return fmt.Errorf("schemaload: schema %q declares neither properties nor alias", name)
		}
	}
	return nil
}

// buildProperties converts a property map into a sorted property list so
// error ordering stays deterministic across loads.
func buildProperties(nodes map[string]*TypeNode) ([]skematic.Property, error) {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make([]skematic.Property, 0, len(names))
	for _, name := range names {
		n := nodes[name]
		d, err := buildDescriptor(n)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		props = append(props, skematic.Property{
			Name:     name,
			Type:     d,
			Optional: n.Optional,
			ReadOnly: n.ReadOnly,
		})
	}
	return props, nil
}

var kindByName = map[string]skematic.Kind{
	"string":       skematic.KindString,
	"number":       skematic.KindNumber,
	"boolean":      skematic.KindBoolean,
	"date":         skematic.KindDate,
	"null":         skematic.KindNull,
	"undefined":    skematic.KindUndefined,
	"any":          skematic.KindAny,
	"unknown":      skematic.KindUnknown,
	"never":        skematic.KindNever,
	"literal":      skematic.KindLiteral,
	"array":        skematic.KindArray,
	"tuple":        skematic.KindTuple,
	"object":       skematic.KindObject,
	"union":        skematic.KindUnion,
	"intersection": skematic.KindIntersection,
	"reference":    skematic.KindReference,
}

func buildDescriptor(n *TypeNode) (*skematic.Descriptor, error) {
	if n == nil {
		return nil, fmt.Errorf("missing type node")
	}
	typeName := n.Type
	if typeName == "" && n.Ref != "" {
		typeName = "reference"
	}
	kind, ok := kindByName[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", n.Type)
	}

	d := &skematic.Descriptor{Kind: kind, Nullable: n.Nullable}
	if n.AutoTransform {
		d.Transform = &transform.Spec{Auto: true}
	}

	var err error
	switch kind {
	case skematic.KindLiteral:
		d.Literal = n.Value
	case skematic.KindArray:
		if n.Items == nil {
			return nil, fmt.Errorf("array requires items")
		}
		if d.Elem, err = buildDescriptor(n.Items); err != nil {
			return nil, err
		}
	case skematic.KindTuple:
		d.Elems = make([]*skematic.Descriptor, len(n.Elements))
		for i, el := range n.Elements {
			if d.Elems[i], err = buildDescriptor(el); err != nil {
				return nil, err
			}
		}
	case skematic.KindObject:
		props, perr := buildProperties(n.Properties)
		if perr != nil {
			return nil, perr
		}
		d.Properties = props
	case skematic.KindUnion:
		if n.Discriminator != "" {
			d.Discriminator = n.Discriminator
			d.Variants = make(map[string]*skematic.Descriptor, len(n.Variants))
			for tag, vn := range n.Variants {
				if d.Variants[tag], err = buildDescriptor(vn); err != nil {
					return nil, err
				}
			}
			break
		}
		if d.Members, err = buildMembers(n.Members); err != nil {
			return nil, err
		}
	case skematic.KindIntersection:
		if d.Members, err = buildMembers(n.Members); err != nil {
			return nil, err
		}
	case skematic.KindReference:
		if n.Ref == "" {
			return nil, fmt.Errorf("reference requires ref")
		}
		d.Ref = n.Ref
	}

	if n.Constraints != nil {
		c := &skematic.Constraints{
			MinLen: n.Constraints.MinLength,
			MaxLen: n.Constraints.MaxLength,
			Min:    n.Constraints.Min,
			Max:    n.Constraints.Max,
		}
		if n.Constraints.Pattern != "" {
			re, cerr := regexp.Compile(n.Constraints.Pattern)
			if cerr != nil {
				return nil, fmt.Errorf("invalid pattern: %w", cerr)
			}
			c.Pattern = re
		}
		d.Constraints = c
	}
	return d, nil
}

func buildMembers(nodes []*TypeNode) ([]*skematic.Descriptor, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("union/intersection requires members")
	}
	out := make([]*skematic.Descriptor, len(nodes))
	for i, n := range nodes {
		d, err := buildDescriptor(n)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
