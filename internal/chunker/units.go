package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"dupescan/internal/model"

	sitter "github.com/smacker/go-tree-sitter"
)

var hookName = regexp.MustCompile(`^use[A-Z0-9]`)

func isHookName(name string) bool { return hookName.MatchString(name) }

// wrapperCalls are call expressions whose first argument is the real
// component, e.g. memo(function Card() {...}).
var wrapperCalls = map[string]bool{
	"memo":       true,
	"forwardRef": true,
	"observer":   true,
}

// span is a byte range with its start and end points.
type span struct {
	startByte, endByte uint32
	start, end         sitter.Point
}

func nodeSpan(n *sitter.Node) span {
	return span{
		startByte: n.StartByte(),
		endByte:   n.EndByte(),
		start:     n.StartPoint(),
		end:       n.EndPoint(),
	}
}

func (s span) lines() int { return int(s.end.Row) - int(s.start.Row) + 1 }

// unit is a top-level named function-like declaration.
type unit struct {
	name          string
	fn            *sitter.Node // node with parameters and body
	span          span
	exported      bool
	defaultExport bool
	anonymous     bool
}

// discoverUnits walks the program's top-level statements and returns every
// function-like declaration in source order, with export flags resolved.
func discoverUnits(root *sitter.Node, src []byte) []unit {
	var units []unit
	exported := make(map[string]bool)
	defaultName := ""

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "function_declaration", "generator_function_declaration",
			"lexical_declaration", "variable_declaration":
			units = append(units, declarationUnits(stmt, stmt, src)...)
		case "export_statement":
			units = append(units, exportUnits(stmt, src, exported, &defaultName)...)
		}
	}

	for i := range units {
		if exported[units[i].name] {
			units[i].exported = true
		}
		if defaultName != "" && units[i].name == defaultName {
			units[i].exported = true
			units[i].defaultExport = true
		}
	}
	return units
}

// declarationUnits extracts units from a declaration. outer is the
// statement whose span the chunk covers.
func declarationUnits(decl, outer *sitter.Node, src []byte) []unit {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		name := decl.ChildByFieldName("name")
		if name == nil {
			return nil
		}
		return []unit{{name: name.Content(src), fn: decl, span: nodeSpan(outer)}}

	case "lexical_declaration", "variable_declaration":
		var declarators []*sitter.Node
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			if d := decl.NamedChild(i); d.Type() == "variable_declarator" {
				declarators = append(declarators, d)
			}
		}
		var units []unit
		for _, d := range declarators {
			name := d.ChildByFieldName("name")
			value := d.ChildByFieldName("value")
			if name == nil || value == nil || name.Type() != "identifier" {
				continue
			}
			fn := unwrapFunction(value, src)
			if fn == nil {
				continue
			}
			s := nodeSpan(outer)
			if len(declarators) > 1 {
				s = nodeSpan(d)
			}
			units = append(units, unit{name: name.Content(src), fn: fn, span: s})
		}
		return units
	}
	return nil
}

func exportUnits(stmt *sitter.Node, src []byte, exported map[string]bool, defaultName *string) []unit {
	isDefault := false
	for i := 0; i < int(stmt.ChildCount()); i++ {
		if c := stmt.Child(i); !c.IsNamed() && c.Type() == "default" {
			isDefault = true
			break
		}
	}

	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		units := declarationUnits(decl, stmt, src)
		for i := range units {
			units[i].exported = true
			units[i].defaultExport = isDefault
		}
		return units
	}

	if value := stmt.ChildByFieldName("value"); value != nil && isDefault {
		if id := exportedIdentifier(value, src); id != "" {
			*defaultName = id
			return nil
		}
		fn := unwrapFunction(value, src)
		if fn == nil {
			return nil
		}
		u := unit{name: "default", fn: fn, span: nodeSpan(stmt), exported: true, defaultExport: true, anonymous: true}
		if n := fn.ChildByFieldName("name"); n != nil {
			u.name = n.Content(src)
			u.anonymous = false
		}
		return []unit{u}
	}

	// export { A, B as default } without a source re-exports local units.
	if stmt.ChildByFieldName("source") != nil {
		return nil
	}
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		clause := stmt.NamedChild(i)
		if clause.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			spec := clause.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			name := spec.ChildByFieldName("name")
			if name == nil {
				continue
			}
			if alias := spec.ChildByFieldName("alias"); alias != nil && alias.Content(src) == "default" {
				*defaultName = name.Content(src)
				continue
			}
			exported[name.Content(src)] = true
		}
	}
	return nil
}

func isFunctionNode(t string) bool {
	switch t {
	case "arrow_function", "function", "function_expression", "generator_function",
		"function_declaration", "generator_function_declaration", "method_definition":
		return true
	}
	return false
}

// exportedIdentifier resolves `export default Card` and
// `export default memo(Card)` to "Card".
func exportedIdentifier(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "identifier":
		return n.Content(src)
	case "call_expression":
		callee := n.ChildByFieldName("function")
		args := n.ChildByFieldName("arguments")
		if callee == nil || args == nil || args.NamedChildCount() == 0 || !wrapperCalls[lastSegment(callee.Content(src))] {
			return ""
		}
		return exportedIdentifier(args.NamedChild(0), src)
	}
	return ""
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// unwrapFunction returns the function node behind an initializer, looking
// through parentheses, type assertions, and wrapper calls.
func unwrapFunction(n *sitter.Node, src []byte) *sitter.Node {
	switch n.Type() {
	case "arrow_function", "function", "function_expression", "generator_function":
		return n
	case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
		if n.NamedChildCount() == 0 {
			return nil
		}
		return unwrapFunction(n.NamedChild(0), src)
	case "call_expression":
		callee := n.ChildByFieldName("function")
		args := n.ChildByFieldName("arguments")
		if callee == nil || args == nil || args.NamedChildCount() == 0 {
			return nil
		}
		if !wrapperCalls[lastSegment(callee.Content(src))] {
			return nil
		}
		return unwrapFunction(args.NamedChild(0), src)
	}
	return nil
}

// classify picks the chunk kind of a unit from its name and whether its
// body returns markup.
func classify(u unit) model.ChunkKind {
	if isHookName(u.name) {
		return model.KindHook
	}
	if !returnsMarkup(u.fn) {
		return model.KindFunction
	}
	if u.anonymous || startsUpper(u.name) {
		return model.KindComponent
	}
	return model.KindJSXFragment
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func isMarkup(t string) bool {
	switch t {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	}
	return false
}

func containsMarkup(n *sitter.Node) bool {
	if isMarkup(n.Type()) {
		return true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if containsMarkup(n.NamedChild(i)) {
			return true
		}
	}
	return false
}

func returnsMarkup(fn *sitter.Node) bool {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return false
	}
	if body.Type() != "statement_block" {
		return containsMarkup(body)
	}
	return hasMarkupReturn(body)
}

// hasMarkupReturn looks for a return of markup that belongs to the
// enclosing function rather than a nested one.
func hasMarkupReturn(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if isFunctionNode(c.Type()) || c.Type() == "class_declaration" {
			continue
		}
		if c.Type() == "return_statement" {
			if containsMarkup(c) {
				return true
			}
			continue
		}
		if hasMarkupReturn(c) {
			return true
		}
	}
	return false
}

// paramNames lists parameter names, expanding destructured members.
// The result is non-nil.
func paramNames(fn *sitter.Node, src []byte) []string {
	names := []string{}
	if p := fn.ChildByFieldName("parameter"); p != nil {
		return appendPattern(names, p, src)
	}
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return names
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		names = appendPattern(names, params.NamedChild(i), src)
	}
	return names
}

func appendPattern(names []string, n *sitter.Node, src []byte) []string {
	add := func(s string) []string {
		for _, existing := range names {
			if existing == s {
				return names
			}
		}
		return append(names, s)
	}

	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return add(n.Content(src))
	case "required_parameter", "optional_parameter":
		p := n.ChildByFieldName("pattern")
		if p == nil {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				c := n.NamedChild(i)
				if c.Type() != "type_annotation" && c.Type() != "accessibility_modifier" {
					p = c
					break
				}
			}
		}
		if p != nil {
			return appendPattern(names, p, src)
		}
	case "assignment_pattern", "object_assignment_pattern":
		if left := n.ChildByFieldName("left"); left != nil {
			return appendPattern(names, left, src)
		}
	case "pair_pattern":
		if key := n.ChildByFieldName("key"); key != nil {
			return add(key.Content(src))
		}
	case "object_pattern", "array_pattern", "rest_pattern":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			names = appendPattern(names, n.NamedChild(i), src)
		}
	}
	return names
}
