package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/compiler"
	"github.com/typegraph/typegraph/schema/rel"
)

// Validate strictly checks a population of instances and returns an
// aggregated report: per-attribute validation failures and cardinality
// violations per instance, plus unique and unique_together violations
// across all given instances of each entity type. It returns nil when
// the population is clean.
//
// Validation is explicitly invoked rather than automatic on mutation, so
// one pass surfaces every defect at once. The returned error joins one
// EntityError per defective instance and one per entity type with
// uniqueness violations.
func Validate(insts ...*Instance) error {
	var errs []error
	byType := make(map[*compiler.EntityType][]*Instance)
	var order []*compiler.EntityType
	for _, i := range insts {
		if _, seen := byType[i.typ]; !seen {
			order = append(order, i.typ)
		}
		byType[i.typ] = append(byType[i.typ], i)
		if ee := validateInstance(i); !ee.Empty() {
			errs = append(errs, ee)
		}
	}
	for _, t := range order {
		if ee := validateUniqueness(t, byType[t]); !ee.Empty() {
			errs = append(errs, ee)
		}
	}
	return errors.Join(errs...)
}

func validateInstance(i *Instance) *typegraph.EntityError {
	ee := typegraph.NewEntityError(i.typ.Name, i.Label())
	for _, a := range i.typ.Attributes {
		v := i.values[a.Name]
		if v == nil {
			if !a.Optional {
				ee.Append(typegraph.NewAttributeError(i.typ.Name, a.Name, "missing value"))
			}
			continue
		}
		if err := a.Kind.Validate(v); err != nil {
			ee.Append(typegraph.NewAttributeError(i.typ.Name, a.Name, err.Error()))
		}
	}
	for _, r := range i.typ.Relationships {
		count := 0
		if r.ToOne() {
			if i.slots[r.Name] != nil {
				count = 1
			}
		} else {
			count = i.colls[r.Name].Len()
		}
		if count < r.MinRelated {
			ee.Append(typegraph.NewAttributeError(i.typ.Name, r.Name,
				fmt.Sprintf("%d related, minimum is %d", count, r.MinRelated)))
		}
		if r.MaxRelated != rel.Unbounded && count > r.MaxRelated {
			ee.Append(typegraph.NewAttributeError(i.typ.Name, r.Name,
				fmt.Sprintf("%d related, maximum is %d", count, r.MaxRelated)))
		}
	}
	return ee
}

// validateUniqueness checks unique attributes and unique_together tuples
// across one entity type's population.
func validateUniqueness(t *compiler.EntityType, insts []*Instance) *typegraph.EntityError {
	ee := typegraph.NewEntityError(t.Name, "")
	for _, a := range t.Attributes {
		if !a.Unique {
			continue
		}
		seen := make(map[string][]string)
		for _, i := range insts {
			v := i.values[a.Name]
			if v == nil {
				continue
			}
			k := a.UniqueKey(a.Kind.Serialize(v))
			seen[k] = append(seen[k], i.Label())
		}
		for k, labels := range seen {
			if len(labels) > 1 {
				ee.Uniqueness = append(ee.Uniqueness,
					fmt.Sprintf("%s %q is not unique (instances %s)", a.Name, k, strings.Join(labels, ", ")))
			}
		}
	}
	for _, tuple := range t.UniqueTogether {
		seen := make(map[string][]string)
		for _, i := range insts {
			parts := make([]string, 0, len(tuple))
			for _, name := range tuple {
				a, _ := t.Attribute(name)
				v := i.values[name]
				if v == nil {
					parts = nil
					break
				}
				parts = append(parts, a.UniqueKey(a.Kind.Serialize(v)))
			}
			if parts == nil {
				continue
			}
			k := strings.Join(parts, keySep)
			seen[k] = append(seen[k], i.Label())
		}
		for k, labels := range seen {
			if len(labels) > 1 {
				ee.Uniqueness = append(ee.Uniqueness,
					fmt.Sprintf("(%s) = %q is not unique_together (instances %s)",
						strings.Join(tuple, ", "), strings.ReplaceAll(k, keySep, ", "), strings.Join(labels, ", ")))
			}
		}
	}
	return ee
}
