package span

import (
	"sort"

	"github.com/yaklabco/spanedit/pkg/matcher"
)

// Build constructs the containment tree for a match.
//
// Groups that did not participate produce no span. Each remaining capture is
// claimed by the first claiming span that contains it, visiting captures by
// start offset (longest first at equal starts) and then by group number, so
// among captures with identical bounds the lowest-numbered one is the parent.
// For engines that number groups in pattern order this is plain group order.
func Build(m *matcher.Match) (*Tree, error) {
	if m == nil || len(m.Groups) == 0 || !m.Groups[0].Matched {
		return nil, &InvariantError{Group: 0, Other: -1, Reason: "match has no whole-match group"}
	}

	whole := m.Groups[0]
	tree := &Tree{
		spans:  make([]record, 0, len(m.Groups)),
		groups: make([]ID, len(m.Groups)),
		names:  make(map[string]ID),
		base:   whole.Start,
	}

	for index, group := range m.Groups {
		tree.groups[index] = None
		if !group.Matched {
			continue
		}
		if group.End < group.Start || len(group.Text) != group.End-group.Start {
			return nil, &InvariantError{
				Group:  index,
				Other:  -1,
				Start:  group.Start - whole.Start,
				End:    group.End - whole.Start,
				Reason: "capture text does not match its offsets",
			}
		}

		id := ID(len(tree.spans))
		tree.spans = append(tree.spans, record{
			group:    index,
			original: group.Text,
			current:  group.Text,
			start:    group.Start - whole.Start,
			end:      group.End - whole.Start,
			offset:   group.Start - whole.Start,
			parent:   None,
		})
		tree.groups[index] = id
	}

	for name, index := range m.Names {
		if index < 0 || index >= len(tree.groups) || tree.groups[index] == None {
			continue
		}
		id := tree.groups[index]
		tree.spans[id].label = name
		tree.names[name] = id
	}

	if err := tree.assignParents(); err != nil {
		return nil, err
	}

	return tree, nil
}

// assignParents claims every capture under its direct parent, sorts
// children, checks that siblings do not overlap and rebases offsets onto
// the parent.
func (t *Tree) assignParents() error {
	order := make([]ID, 0, len(t.spans))
	for id := Root + 1; int(id) < len(t.spans); id++ {
		order = append(order, id)
	}
	sort.SliceStable(order, func(a, b int) bool {
		left, right := &t.spans[order[a]], &t.spans[order[b]]
		if left.start != right.start {
			return left.start < right.start
		}
		return left.end > right.end
	})

	claimed := make([]bool, len(t.spans))
	claimed[Root] = true
	t.claim(Root, order, 0, claimed)

	for _, id := range order {
		if !claimed[id] {
			rec := &t.spans[id]
			return &InvariantError{
				Group:  rec.group,
				Other:  -1,
				Start:  rec.start,
				End:    rec.end,
				Reason: "capture lies outside the whole match",
			}
		}
	}

	for id := range t.spans {
		rec := &t.spans[id]
		sort.SliceStable(rec.children, func(a, b int) bool {
			return t.spans[rec.children[a]].start < t.spans[rec.children[b]].start
		})
		for i := 1; i < len(rec.children); i++ {
			prev, next := &t.spans[rec.children[i-1]], &t.spans[rec.children[i]]
			if prev.end > next.start {
				return &InvariantError{
					Group:  next.group,
					Other:  prev.group,
					Start:  next.start,
					End:    next.end,
					Reason: "captures partially overlap",
				}
			}
		}
	}

	// Offsets are match-relative until here; rebase onto the parent.
	for id := range t.spans {
		rec := &t.spans[id]
		if rec.parent == None {
			continue
		}
		base := t.spans[rec.parent].offset
		rec.start = rec.offset - base
		rec.end = rec.start + len(rec.original)
	}

	return nil
}

// claim attaches to parent every unclaimed span after position from in
// order that parent contains, letting each new child claim its own
// descendants before the scan moves on.
func (t *Tree) claim(parent ID, order []ID, from int, claimed []bool) {
	for k := from; k < len(order); k++ {
		id := order[k]
		if claimed[id] || !t.spans[parent].contains(&t.spans[id]) {
			continue
		}
		claimed[id] = true
		t.spans[id].parent = parent
		t.spans[parent].children = append(t.spans[parent].children, id)
		t.claim(id, order, k+1, claimed)
	}
}

func (r *record) contains(other *record) bool {
	return r.start <= other.start && other.end <= r.end
}
