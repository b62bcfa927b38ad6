// Package gen emits Go source from a compiled schema: one package per
// entity type holding its name constants, so application code refers to
// attributes and relationships through compile-checked identifiers
// instead of strings.
package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"

	"github.com/typegraph/typegraph/compiler"
)

// Config controls generation.
type Config struct {
	// Target is the directory the per-type packages are written under.
	Target string
	// Header is an optional comment line placed atop each file.
	Header string
}

// Generate writes one package per entity type of the compiled graph
// under cfg.Target.
func Generate(g *compiler.Graph, cfg Config) error {
	if cfg.Target == "" {
		return fmt.Errorf("gen: no target directory")
	}
	for _, t := range g.Types {
		pkg := PackageName(t)
		dir := filepath.Join(cfg.Target, pkg)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("gen: %w", err)
		}
		f := Render(t, cfg)
		if err := f.Save(filepath.Join(dir, pkg+".go")); err != nil {
			return fmt.Errorf("gen: render %s: %w", t.Name, err)
		}
	}
	return nil
}

// PackageName returns the generated package name for an entity type.
func PackageName(t *compiler.EntityType) string {
	return strings.ReplaceAll(inflect.Underscore(t.Name), "_", "")
}

// Render builds the generated file for one entity type.
func Render(t *compiler.EntityType, cfg Config) *jen.File {
	f := jen.NewFile(PackageName(t))
	if cfg.Header != "" {
		f.HeaderComment(cfg.Header)
	}
	f.HeaderComment("Code generated by typegraph gen. DO NOT EDIT.")

	f.Comment("TypeName is the entity type this package describes.")
	f.Const().Id("TypeName").Op("=").Lit(t.Name)
	f.Line()

	var consts []jen.Code
	for _, a := range t.Attributes {
		consts = append(consts,
			jen.Commentf("Attr%s holds the name of the %q attribute.", exported(a.Name), a.Name),
			jen.Id("Attr"+exported(a.Name)).Op("=").Lit(a.Name),
		)
	}
	for _, r := range t.Relationships {
		consts = append(consts,
			jen.Commentf("Rel%s holds the name of the %q relationship.", exported(r.Name), r.Name),
			jen.Id("Rel"+exported(r.Name)).Op("=").Lit(r.Name),
		)
	}
	if len(consts) > 0 {
		f.Const().Defs(consts...)
		f.Line()
	}

	attrNames := make([]jen.Code, 0, len(t.Attributes))
	for _, a := range t.Attributes {
		attrNames = append(attrNames, jen.Lit(a.Name))
	}
	f.Comment("Attrs lists the attribute names in declaration order.")
	f.Var().Id("Attrs").Op("=").Index().String().Values(attrNames...)

	if p := t.Primary; p != nil {
		f.Line()
		f.Comment("PrimaryAttr is the primary attribute name.")
		f.Const().Id("PrimaryAttr").Op("=").Lit(p.Name)
	}
	return f
}

// exported turns an attribute name into an exported Go identifier.
func exported(name string) string {
	return inflect.Camelize(name)
}
