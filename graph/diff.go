package graph

import (
	"fmt"
	"strings"
)

// Report is a nested structural-difference report. Leaves are literal
// mismatch messages; children mirror relationship attributes and matched
// collection elements. Empty sub-reports are pruned before rendering.
type Report struct {
	Label    string
	Messages []string
	Children []*Report
}

// Empty reports whether the report carries no differences.
func (r *Report) Empty() bool {
	return len(r.Messages) == 0 && len(r.Children) == 0
}

// String renders the report as indented text.
func (r *Report) String() string {
	var sb strings.Builder
	type frame struct {
		rep   *Report
		depth int
	}
	stack := []frame{{r, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		indent := strings.Repeat("  ", f.depth)
		if f.rep.Label != "" {
			fmt.Fprintf(&sb, "%s%s:\n", indent, f.rep.Label)
		}
		for _, m := range f.rep.Messages {
			fmt.Fprintf(&sb, "%s  %s\n", indent, m)
		}
		for n := len(f.rep.Children) - 1; n >= 0; n-- {
			stack = append(stack, frame{f.rep.Children[n], f.depth + 1})
		}
	}
	return sb.String()
}

// prune drops empty sub-reports bottom-up.
func (r *Report) prune() {
	// Post-order over an explicit stack: children first, then filter.
	type frame struct {
		rep      *Report
		expanded bool
	}
	stack := []frame{{r, false}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if !f.expanded {
			f.expanded = true
			for _, c := range f.rep.Children {
				stack = append(stack, frame{c, false})
			}
			continue
		}
		stack = stack[:len(stack)-1]
		kept := f.rep.Children[:0]
		for _, c := range f.rep.Children {
			if !c.Empty() {
				kept = append(kept, c)
			}
		}
		f.rep.Children = kept
	}
}

// Diff compares the graphs rooted at a and b and returns a nested report
// of their differences. Both graphs are canonicalized first; relationship
// collections are diffed by a merge-join over both sides' elements sorted
// by serialized key, so matched elements recurse into sub-reports and
// one-sided elements are reported unmatched.
func Diff(a, b *Instance) *Report {
	root := &Report{Label: fmt.Sprintf("%s[%s] vs %s[%s]", a.typ.Name, a.Label(), b.typ.Name, b.Label())}
	if a.typ.Name != b.typ.Name {
		root.Messages = append(root.Messages, "entity types differ")
		return root
	}
	Canonicalize(a)
	Canonicalize(b)
	keys := canonicalizer{memo: make(map[*Instance]string)}
	type task struct {
		a, b *Instance
		rep  *Report
	}
	visited := make(map[[2]*Instance]bool)
	work := []task{{a, b, root}}
	for len(work) > 0 {
		t := work[len(work)-1]
		work = work[:len(work)-1]
		if visited[[2]*Instance{t.a, t.b}] {
			continue
		}
		visited[[2]*Instance{t.a, t.b}] = true
		for _, at := range t.a.typ.Attributes {
			va, vb := t.a.values[at.Name], t.b.values[at.Name]
			switch {
			case va == nil && vb == nil:
			case va == nil:
				t.rep.Messages = append(t.rep.Messages, fmt.Sprintf("%s: unset != %s", at.Name, at.Kind.Serialize(vb)))
			case vb == nil:
				t.rep.Messages = append(t.rep.Messages, fmt.Sprintf("%s: %s != unset", at.Name, at.Kind.Serialize(va)))
			case !at.Kind.Equal(va, vb):
				t.rep.Messages = append(t.rep.Messages,
					fmt.Sprintf("%s: %s != %s", at.Name, at.Kind.Serialize(va), at.Kind.Serialize(vb)))
			}
		}
		for _, r := range t.a.typ.Relationships {
			sub := &Report{Label: r.Name}
			t.rep.Children = append(t.rep.Children, sub)
			if r.ToOne() {
				sa, sb := t.a.slots[r.Name], t.b.slots[r.Name]
				switch {
				case sa == nil && sb == nil:
				case sa == nil:
					sub.Messages = append(sub.Messages, fmt.Sprintf("unset != %s", sb.Label()))
				case sb == nil:
					sub.Messages = append(sub.Messages, fmt.Sprintf("%s != unset", sa.Label()))
				default:
					child := &Report{Label: sa.Label()}
					sub.Children = append(sub.Children, child)
					work = append(work, task{sa, sb, child})
				}
				continue
			}
			ca, cb := t.a.colls[r.Name].items, t.b.colls[r.Name].items
			// Merge-join over both sides sorted by serialized key.
			na, nb := 0, 0
			for na < len(ca) || nb < len(cb) {
				switch {
				case nb == len(cb) || (na < len(ca) && keys.key(ca[na]) < keys.key(cb[nb])):
					sub.Messages = append(sub.Messages, fmt.Sprintf("only on left: %s", ca[na].Label()))
					na++
				case na == len(ca) || keys.key(ca[na]) > keys.key(cb[nb]):
					sub.Messages = append(sub.Messages, fmt.Sprintf("only on right: %s", cb[nb].Label()))
					nb++
				default:
					child := &Report{Label: ca[na].Label()}
					sub.Children = append(sub.Children, child)
					work = append(work, task{ca[na], cb[nb], child})
					na++
					nb++
				}
			}
		}
	}
	root.prune()
	return root
}
