package span

// TextByIndex returns the current text of a capture group, or "" when the
// group is unknown or did not participate.
func (t *Tree) TextByIndex(index int) string {
	id, ok := t.Group(index)
	if !ok {
		return ""
	}
	return t.spans[id].current
}

// TextByName returns the current text of a named capture, or "" when the
// name is unknown or the capture did not participate.
func (t *Tree) TextByName(name string) string {
	id, ok := t.Lookup(name)
	if !ok {
		return ""
	}
	return t.spans[id].current
}

// OriginalByIndex returns the matched text of a capture group.
func (t *Tree) OriginalByIndex(index int) string {
	id, ok := t.Group(index)
	if !ok {
		return ""
	}
	return t.spans[id].original
}

// OriginalByName returns the matched text of a named capture.
func (t *Tree) OriginalByName(name string) string {
	id, ok := t.Lookup(name)
	if !ok {
		return ""
	}
	return t.spans[id].original
}

// SetByIndex replaces the text of a capture group and drops its children.
// Unknown, non-participating and detached groups are ignored.
func (t *Tree) SetByIndex(index int, text string) {
	if id, ok := t.Group(index); ok {
		t.set(id, text)
	}
}

// SetByName replaces the text of a named capture and drops its children.
// Unknown, non-participating and detached captures are ignored.
func (t *Tree) SetByName(name string, text string) {
	if id, ok := t.Lookup(name); ok {
		t.set(id, text)
	}
}

// SetWholeText replaces the text of the whole match.
func (t *Tree) SetWholeText(text string) {
	if len(t.spans) > 0 {
		t.set(Root, text)
	}
}

// Edited reports whether any attached span has been replaced.
func (t *Tree) Edited() bool {
	edited := false
	t.Walk(func(s Span, _ int) bool {
		if s.Edited {
			edited = true
		}
		return !edited
	})
	return edited
}

func (t *Tree) set(id ID, text string) {
	rec := &t.spans[id]
	if rec.detached {
		return
	}
	rec.current = text
	rec.edited = true
	for _, child := range rec.children {
		t.detach(child)
	}
	rec.children = nil
}

func (t *Tree) detach(id ID) {
	rec := &t.spans[id]
	rec.detached = true
	for _, child := range rec.children {
		t.detach(child)
	}
}
