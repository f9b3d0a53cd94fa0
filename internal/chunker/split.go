package chunker

import (
	"fmt"
	"strings"

	"dupescan/internal/model"

	sitter "github.com/smacker/go-tree-sitter"
)

// item is one splittable piece of a unit: a top-level markup child or a
// body statement.
type item struct {
	node  *sitter.Node
	span  span
	label string
}

// section is a run of consecutive items that becomes one section chunk.
type section struct {
	span  span
	label string
}

// split replaces an oversized unit with a summary chunk followed by its
// section chunks. Units whose markup root carries children split along
// those children; everything else splits along body statements. It returns
// nil when the unit has nothing to split on or every section is too short.
func (f *file) split(u unit, kind model.ChunkKind, props, hooks []string, opts Options) []model.Chunk {
	summaryKind, sectionKind := kind.SplitKinds()

	var sections []section
	if root := rootMarkup(u.fn); kind.ReturnsMarkup() && root != nil {
		if items := f.markupItems(root); len(items) > 0 {
			sections = f.group(items, opts.MaxLines, f.markupItems)
		}
	}
	if len(sections) == 0 {
		sectionKind = model.KindFunctionSection
		if items := f.statementItems(u.fn); len(items) > 0 {
			sections = f.group(items, opts.MaxLines, f.blockItems)
		}
	}
	if len(sections) == 0 {
		return nil
	}

	// The summary covers the unit's head, up to the first section.
	headEnd := sections[0].span.start.Row
	if headEnd > u.span.start.Row {
		headEnd--
	}
	head := u.span
	head.end = sitter.Point{Row: headEnd, Column: f.lineEnd(headEnd) - f.lineStarts[headEnd]}
	head.endByte = min(f.lineEnd(headEnd), u.span.endByte)
	summary := f.newChunk(summaryKind, u, head, f.text(head), model.Metadata{
		Props:           props,
		Hooks:           hooks,
		IsExported:      u.exported,
		IsDefaultExport: u.defaultExport,
	})

	chunks := []model.Chunk{summary}
	for _, s := range sections {
		if s.span.lines() < opts.minLines() {
			continue
		}
		tags, sectionHooks := f.collectNames(u.fn, s.span.start.Row, s.span.end.Row)
		ch := f.newChunk(sectionKind, u, s.span, f.text(s.span), model.Metadata{
			JSXElements:     tags,
			Hooks:           sectionHooks,
			IsExported:      u.exported,
			IsDefaultExport: u.defaultExport,
		})
		ch.Section = &model.SectionInfo{
			ParentID: summary.ID,
			Index:    len(chunks) - 1,
			Label:    s.label,
		}
		chunks = append(chunks, ch)
	}
	if len(chunks) == 1 {
		return nil
	}
	return chunks
}

// group packs consecutive items into sections of at most maxLines. An item
// longer than maxLines stands alone; past twice maxLines it is broken up
// further, along its children when descend finds any, else into line
// windows.
func (f *file) group(items []item, maxLines int, descend func(*sitter.Node) []item) []section {
	var out []section
	var cur []item
	flush := func() {
		if len(cur) == 0 {
			return
		}
		first, last := cur[0], cur[len(cur)-1]
		s := section{
			span: span{
				startByte: first.span.startByte,
				endByte:   last.span.endByte,
				start:     first.span.start,
				end:       last.span.end,
			},
			label: first.label,
		}
		if len(cur) > 1 {
			s.label = fmt.Sprintf("%s (+%d more)", first.label, len(cur)-1)
		}
		out = append(out, s)
		cur = nil
	}

	for _, it := range items {
		n := it.span.lines()
		if n > maxLines {
			flush()
			if n <= 2*maxLines {
				cur = []item{it}
				flush()
			} else if children := descend(it.node); len(children) > 0 {
				out = append(out, f.group(children, maxLines, descend)...)
			} else {
				out = append(out, f.windows(it, maxLines)...)
			}
			continue
		}
		if len(cur) > 0 && int(it.span.end.Row)-int(cur[0].span.start.Row)+1 > maxLines {
			flush()
		}
		cur = append(cur, it)
	}
	flush()
	return out
}

// windows cuts an item into consecutive line ranges of maxLines.
func (f *file) windows(it item, maxLines int) []section {
	var out []section
	for row := it.span.start.Row; row <= it.span.end.Row; row += uint32(maxLines) {
		last := min(row+uint32(maxLines)-1, it.span.end.Row)
		s := span{
			startByte: f.lineStarts[row],
			endByte:   f.lineEnd(last),
			start:     sitter.Point{Row: row},
			end:       sitter.Point{Row: last, Column: f.lineEnd(last) - f.lineStarts[last]},
		}
		if row == it.span.start.Row {
			s.startByte, s.start = it.span.startByte, it.span.start
		}
		if last == it.span.end.Row {
			s.endByte, s.end = it.span.endByte, it.span.end
		}
		out = append(out, section{
			span:  s,
			label: fmt.Sprintf("%s (lines %d-%d)", it.label, row+1, last+1),
		})
	}
	return out
}

// rootMarkup returns the markup element a function renders, if its final
// top-level return (or expression body) is an element with children.
func rootMarkup(fn *sitter.Node) *sitter.Node {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	if body.Type() != "statement_block" {
		return unwrapMarkup(body)
	}
	for i := int(body.NamedChildCount()) - 1; i >= 0; i-- {
		stmt := body.NamedChild(i)
		if stmt.Type() != "return_statement" || stmt.NamedChildCount() == 0 {
			continue
		}
		if el := unwrapMarkup(stmt.NamedChild(0)); el != nil {
			return el
		}
	}
	return nil
}

func unwrapMarkup(n *sitter.Node) *sitter.Node {
	switch n.Type() {
	case "parenthesized_expression":
		if n.NamedChildCount() == 0 {
			return nil
		}
		return unwrapMarkup(n.NamedChild(0))
	case "jsx_element", "jsx_fragment":
		return n
	}
	return nil
}

// markupItems lists the element children of a markup node. Child spans are
// trimmed so a section starts on its first element's own line.
func (f *file) markupItems(el *sitter.Node) []item {
	if el == nil || (el.Type() != "jsx_element" && el.Type() != "jsx_fragment") {
		return nil
	}
	var items []item
	for i := 0; i < int(el.NamedChildCount()); i++ {
		c := el.NamedChild(i)
		switch c.Type() {
		case "jsx_element", "jsx_self_closing_element", "jsx_fragment", "jsx_expression":
		case "jsx_text":
			if strings.TrimSpace(c.Content(f.src)) == "" {
				continue
			}
		default:
			continue
		}
		items = append(items, item{node: c, span: f.trim(nodeSpan(c)), label: f.markupLabel(c)})
	}
	return items
}

// statementItems lists the top-level statements of a function body.
func (f *file) statementItems(fn *sitter.Node) []item {
	body := fn.ChildByFieldName("body")
	if body == nil || body.Type() != "statement_block" {
		return nil
	}
	return f.blockItems(body)
}

// blockItems lists the statements of a block, or of the block directly
// owned by a compound statement.
func (f *file) blockItems(n *sitter.Node) []item {
	if n == nil {
		return nil
	}
	if n.Type() != "statement_block" {
		body := n.ChildByFieldName("body")
		if body == nil {
			body = n.ChildByFieldName("consequence")
		}
		if body == nil || body.Type() != "statement_block" {
			return nil
		}
		n = body
	}
	var items []item
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		items = append(items, item{node: c, span: nodeSpan(c), label: f.statementLabel(c)})
	}
	return items
}

func (f *file) markupLabel(n *sitter.Node) string {
	switch n.Type() {
	case "jsx_self_closing_element":
		if name := n.ChildByFieldName("name"); name != nil {
			return "<" + name.Content(f.src) + " />"
		}
	case "jsx_element":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() != "jsx_opening_element" {
				continue
			}
			if name := c.ChildByFieldName("name"); name != nil {
				return "<" + name.Content(f.src) + ">"
			}
			return "<>"
		}
	case "jsx_fragment":
		return "<>"
	case "jsx_expression":
		return "{" + squash(strings.Trim(n.Content(f.src), "{}"), 32) + "}"
	case "jsx_text":
		return "text: " + squash(n.Content(f.src), 24)
	}
	return n.Type()
}

func (f *file) statementLabel(n *sitter.Node) string {
	switch n.Type() {
	case "lexical_declaration", "variable_declaration":
		var names []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if name := n.NamedChild(i).ChildByFieldName("name"); name != nil {
				names = append(names, squash(name.Content(f.src), 24))
			}
		}
		return n.Child(0).Type() + " " + strings.Join(names, ", ")
	case "if_statement":
		if cond := n.ChildByFieldName("condition"); cond != nil {
			return "if " + squash(cond.Content(f.src), 32)
		}
		return "if"
	case "for_statement", "for_in_statement", "while_statement", "do_statement":
		return "loop"
	case "return_statement":
		return "return"
	case "try_statement":
		return "try/catch"
	case "switch_statement":
		return "switch"
	case "function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			return "function " + name.Content(f.src)
		}
	case "expression_statement":
		if n.NamedChildCount() > 0 {
			expr := n.NamedChild(0)
			switch expr.Type() {
			case "call_expression", "await_expression":
				return "call " + squash(callee(expr, f.src), 32)
			case "assignment_expression", "augmented_assignment_expression":
				if left := expr.ChildByFieldName("left"); left != nil {
					return "assign " + squash(left.Content(f.src), 32)
				}
			}
		}
		return "expression"
	}
	return strings.ReplaceAll(n.Type(), "_", " ")
}

func callee(n *sitter.Node, src []byte) string {
	if n.Type() == "await_expression" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	if fn := n.ChildByFieldName("function"); fn != nil {
		return fn.Content(src) + "()"
	}
	return n.Content(src)
}

// squash collapses whitespace and caps s at n runes.
func squash(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}
