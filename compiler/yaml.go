package compiler

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/schema/attr"
	"github.com/typegraph/typegraph/schema/index"
	"github.com/typegraph/typegraph/schema/rel"
)

// yamlFile is the on-disk declaration format:
//
//	types:
//	  - name: Compound
//	    orientation: row-major
//	    fields:
//	      - {name: id, kind: identifier, primary: true, unique: true}
//	      - {name: mass, kind: float, min: 0}
//	    relations:
//	      - {name: parts, type: Part, ref: compound, rev_unique: true}
//	    indexes:
//	      - {fields: [name, version], unique: true}
type yamlFile struct {
	Types []yamlType `yaml:"types"`
}

type yamlType struct {
	Name        string      `yaml:"name"`
	Orientation string      `yaml:"orientation"`
	Fields      []yamlField `yaml:"fields"`
	Relations   []yamlRel   `yaml:"relations"`
	Indexes     []yamlIndex `yaml:"indexes"`
}

type yamlField struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Primary    bool     `yaml:"primary"`
	Unique     bool     `yaml:"unique"`
	UniqueFold bool     `yaml:"unique_case_insensitive"`
	Optional   bool     `yaml:"optional"`
	Default    any      `yaml:"default"`
	Min        *float64 `yaml:"min"`
	Max        *float64 `yaml:"max"`
	AllowNaN   bool     `yaml:"allow_nan"`
	Tolerance  float64  `yaml:"tolerance"`
	MinLen     int      `yaml:"min_len"`
	MaxLen     int      `yaml:"max_len"`
	Pattern    string   `yaml:"pattern"`
	Values     []string `yaml:"values"`
}

type yamlRel struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	Ref           string `yaml:"ref"`
	Inverse       bool   `yaml:"inverse"`
	Unique        bool   `yaml:"unique"`
	RevUnique     bool   `yaml:"rev_unique"`
	Backref       bool   `yaml:"backref"`
	Required      bool   `yaml:"required"`
	MinRelated    int    `yaml:"min_related"`
	MaxRelated    int    `yaml:"max_related"`
	MinRelatedRev int    `yaml:"min_related_rev"`
	MaxRelatedRev int    `yaml:"max_related_rev"`
}

type yamlIndex struct {
	Fields []string `yaml:"fields"`
	Unique bool     `yaml:"unique"`
}

// loadedSchema adapts one YAML type declaration to typegraph.Interface.
type loadedSchema struct {
	typegraph.Schema
	name        string
	orientation typegraph.Orientation
	fields      []typegraph.Attribute
	relations   []typegraph.Relation
	indexes     []typegraph.Index
}

func (s *loadedSchema) TypeName() string                   { return s.name }
func (s *loadedSchema) Orientation() typegraph.Orientation { return s.orientation }
func (s *loadedSchema) Fields() []typegraph.Attribute      { return s.fields }
func (s *loadedSchema) Relations() []typegraph.Relation    { return s.relations }
func (s *loadedSchema) Indexes() []typegraph.Index         { return s.indexes }

// LoadYAML reads a declarative schema file and returns the schema
// definitions it declares, ready for Compile.
func LoadYAML(r io.Reader) ([]typegraph.Interface, error) {
	var f yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("compiler: decoding schema yaml: %w", err)
	}
	if len(f.Types) == 0 {
		return nil, fmt.Errorf("compiler: schema yaml declares no types")
	}
	out := make([]typegraph.Interface, 0, len(f.Types))
	for _, yt := range f.Types {
		s := &loadedSchema{name: yt.Name}
		var err error
		if s.orientation, err = parseOrientation(yt.Orientation); err != nil {
			return nil, fmt.Errorf("compiler: type %q: %w", yt.Name, err)
		}
		for _, yf := range yt.Fields {
			b, err := yf.builder()
			if err != nil {
				return nil, fmt.Errorf("compiler: type %q: %w", yt.Name, err)
			}
			s.fields = append(s.fields, b)
		}
		for _, yr := range yt.Relations {
			s.relations = append(s.relations, yr.builder())
		}
		for _, yi := range yt.Indexes {
			b := index.Fields(yi.Fields...)
			if yi.Unique {
				b = b.Unique()
			}
			s.indexes = append(s.indexes, b)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileYAML loads and compiles a declarative schema file in one step.
func CompileYAML(r io.Reader) (*Graph, error) {
	schemas, err := LoadYAML(r)
	if err != nil {
		return nil, err
	}
	return Compile(schemas...)
}

func parseOrientation(s string) (typegraph.Orientation, error) {
	switch s {
	case "", "row-major", "row":
		return typegraph.RowMajor, nil
	case "column-major", "column":
		return typegraph.ColumnMajor, nil
	case "single-cell":
		return typegraph.SingleCell, nil
	case "multi-cell":
		return typegraph.MultiCell, nil
	default:
		return 0, fmt.Errorf("unknown orientation %q", s)
	}
}

func (yf yamlField) builder() (typegraph.Attribute, error) {
	switch yf.Kind {
	case "string", "text":
		b := attr.String(yf.Name)
		if yf.MinLen > 0 {
			b = b.MinLen(yf.MinLen)
		}
		if yf.MaxLen > 0 {
			b = b.MaxLen(yf.MaxLen)
		}
		if yf.Pattern != "" {
			re, err := regexp.Compile(yf.Pattern)
			if err != nil {
				return nil, fmt.Errorf("field %q: invalid pattern: %w", yf.Name, err)
			}
			b = b.Match(re)
		}
		yf.applyString(b)
		if v, ok := yf.Default.(string); ok {
			b = b.Default(v)
		}
		return b, nil
	case "identifier":
		b := attr.Identifier(yf.Name)
		yf.applyString(b)
		return b, nil
	case "float", "number":
		b := attr.Float(yf.Name)
		if yf.Min != nil {
			b = b.Min(*yf.Min)
		}
		if yf.Max != nil {
			b = b.Max(*yf.Max)
		}
		if yf.AllowNaN {
			b = b.AllowNaN()
		}
		if yf.Tolerance != 0 {
			b = b.Tolerance(yf.Tolerance)
		}
		if yf.Unique {
			b = b.Unique()
		}
		if yf.Optional {
			b = b.Optional()
		}
		return b, nil
	case "int", "integer":
		b := attr.Int(yf.Name)
		if yf.Min != nil {
			b = b.Min(int64(*yf.Min))
		}
		if yf.Max != nil {
			b = b.Max(int64(*yf.Max))
		}
		if yf.Unique {
			b = b.Unique()
		}
		if yf.Optional {
			b = b.Optional()
		}
		return b, nil
	case "bool", "boolean":
		b := attr.Bool(yf.Name)
		if yf.Optional {
			b = b.Optional()
		}
		return b, nil
	case "enum":
		b := attr.Enum(yf.Name).Values(yf.Values...)
		if v, ok := yf.Default.(string); ok {
			b = b.Default(v)
		}
		if yf.Optional {
			b = b.Optional()
		}
		return b, nil
	case "time", "datetime":
		b := attr.Time(yf.Name)
		if yf.Optional {
			b = b.Optional()
		}
		return b, nil
	case "date":
		b := attr.Date(yf.Name)
		if yf.Optional {
			b = b.Optional()
		}
		return b, nil
	default:
		return nil, fmt.Errorf("field %q: unknown kind %q", yf.Name, yf.Kind)
	}
}

// applyString applies the flags shared by the string-shaped kinds.
func (yf yamlField) applyString(b *attr.StringBuilder) {
	if yf.Primary {
		b.Primary()
	}
	if yf.UniqueFold {
		b.UniqueCaseInsensitive()
	} else if yf.Unique {
		b.Unique()
	}
	if yf.Optional {
		b.Optional()
	}
}

func (yr yamlRel) builder() typegraph.Relation {
	var b *rel.Builder
	if yr.Inverse {
		b = rel.From(yr.Name, yr.Type)
	} else {
		b = rel.To(yr.Name, yr.Type)
	}
	if yr.Ref != "" {
		b = b.Ref(yr.Ref)
	}
	if yr.Backref {
		b = b.Backref()
	}
	if yr.Unique {
		b = b.Unique()
	}
	if yr.RevUnique {
		b = b.RevUnique()
	}
	if yr.Required {
		b = b.Required()
	}
	if yr.MinRelated > 0 {
		b = b.MinRelated(yr.MinRelated)
	}
	if yr.MaxRelated > 0 {
		b = b.MaxRelated(yr.MaxRelated)
	}
	if yr.MinRelatedRev > 0 {
		b = b.MinRelatedRev(yr.MinRelatedRev)
	}
	if yr.MaxRelatedRev > 0 {
		b = b.MaxRelatedRev(yr.MaxRelatedRev)
	}
	return b
}
