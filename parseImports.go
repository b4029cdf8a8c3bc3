package main

import (
	"os"
	"path/filepath"
	"strings"
)

type ImportKind uint8

const (
	ValueImport ImportKind = iota
	TypeOnlyImport
)

func (k ImportKind) String() string {
	if k == TypeOnlyImport {
		return "type"
	}
	return "value"
}

func (k ImportKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ExtractedSpecifier is a module request found in a source file, e.g. "lodash/fp".
type ExtractedSpecifier struct {
	Specifier string     `json:"specifier"`
	Kind      ImportKind `json:"kind"`
}

var supportedSourceExtensions = map[string]struct{}{
	".js":  {},
	".jsx": {},
	".mjs": {},
	".cjs": {},
	".ts":  {},
	".tsx": {},
	".mts": {},
	".cts": {},
}

// IsSupportedSourceFile reports whether imports can be extracted from the file.
func IsSupportedSourceFile(filePath string) bool {
	_, ok := supportedSourceExtensions[strings.ToLower(filepath.Ext(filePath))]
	return ok
}

func isWhiteSpace(char byte) bool {
	return (char == ' ' || char == '\t' || char == '\n' || char == '\r')
}

// skipSpaces skips spaces, tabs, and newlines, returns new index
func skipSpaces(code []byte, i int) int {
	for i < len(code) && isWhiteSpace(code[i]) {
		i++
	}
	return i
}

func isByteIdentifierChar(char byte) bool {
	// 0-9 || A-Z || a-z || _ || $
	return (char >= '0' && char <= '9') || (char >= 'A' && char <= 'Z') || (char >= 'a' && char <= 'z') || char == '_' || char == '$'
}

func isQuote(char byte) bool {
	return char == '\'' || char == '"'
}

func hasPrefixAt(code []byte, i int, s string) bool {
	if i < 0 || i+len(s) > len(code) {
		return false
	}
	return string(code[i:i+len(s)]) == s
}

func hasWordAt(code []byte, i int, s string) bool {
	if !hasPrefixAt(code, i, s) {
		return false
	}
	end := i + len(s)
	return end >= len(code) || !isByteIdentifierChar(code[end])
}

// atWordStart is false inside identifiers and after member access, e.g. `foo.require(`.
func atWordStart(code []byte, i int) bool {
	if i == 0 {
		return true
	}
	prev := code[i-1]
	return !isByteIdentifierChar(prev) && prev != '.'
}

// parseStringLiteral extracts the string literal at position i (' or ")
func parseStringLiteral(code []byte, i int) (string, int) {
	quote := code[i]
	i++
	start := i
	for i < len(code) && code[i] != quote && code[i] != '\n' {
		i++
	}
	if i >= len(code) || code[i] != quote {
		return "", i
	}
	return string(code[start:i]), i + 1
}

// parseCallArgument reads a literal first argument of `(...)` at position i.
// Non-literal arguments yield ok=false and the position right after `(`.
func parseCallArgument(code []byte, i int) (module string, next int, ok bool) {
	if i >= len(code) || code[i] != '(' {
		return "", i, false
	}
	i++
	j := skipSpacesAndComments(code, i)
	if j >= len(code) || !isQuote(code[j]) {
		return "", i, false
	}
	module, afterLiteral := parseStringLiteral(code, j)
	k := skipSpacesAndComments(code, afterLiteral)
	if k >= len(code) || (code[k] != ')' && code[k] != ',') {
		return "", i, false
	}
	return module, k, true
}

// areAllImportsInBracesTypes checks if a named import block { ... } contains only "type" imports.
// It assumes code[i] is pointing at '{'.
func areAllImportsInBracesTypes(code []byte, i int) bool {
	i++ // skip '{'
	entries := 0
	for i < len(code) {
		i = skipSpacesAndComments(code, i)
		if i >= len(code) {
			return false
		}
		if code[i] == '}' {
			return entries > 0
		}

		// inside braces `type` must be separated from the identifier
		if hasWordAt(code, i, "type") && i+4 < len(code) && isWhiteSpace(code[i+4]) {
			entries++
			i += 4
			for i < len(code) && code[i] != ',' && code[i] != '}' {
				i++
			}
		} else {
			return false
		}

		if i < len(code) && code[i] == ',' {
			i++
		}
	}
	return false
}

// skipToStringEnd skips to the end of a string literal. A ' or " string also
// ends at an unescaped newline, so a stray quote (JSX text, regex) only
// swallows the rest of its line.
func skipToStringEnd(code []byte, start int, quote byte) int {
	i := start + 1
	for i < len(code) {
		if code[i] == quote || (code[i] == '\n' && quote != '`') {
			return i
		}
		if code[i] == '\\' && i+1 < len(code) {
			i += 2
		} else {
			i++
		}
	}
	return i
}

// skipLineComment skips to the end of a line comment
func skipLineComment(code []byte, start int) int {
	i := start + 2
	for i < len(code) && code[i] != '\n' {
		i++
	}
	return i
}

// skipBlockComment skips to the end of a block comment
func skipBlockComment(code []byte, start int) int {
	i := start + 2
	for i+1 < len(code) && !(code[i] == '*' && code[i+1] == '/') {
		i++
	}
	if i+1 < len(code) {
		i += 2
	} else {
		i = len(code)
	}
	return i
}

// skipSpacesAndComments skips whitespace, line comments, and block comments
func skipSpacesAndComments(code []byte, i int) int {
	n := len(code)
	for i < n {
		i = skipSpaces(code, i)
		if i+1 < n && code[i] == '/' && code[i+1] == '/' {
			i = skipLineComment(code, i)
			continue
		}
		if i+1 < n && code[i] == '/' && code[i+1] == '*' {
			i = skipBlockComment(code, i)
			continue
		}
		break
	}
	return i
}

// skipBalancedBraces returns the position after the `}` matching the `{` at i.
func skipBalancedBraces(code []byte, i int) int {
	n := len(code)
	depth := 0
	for i < n {
		switch {
		case code[i] == '{':
			depth++
		case code[i] == '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		case code[i] == '\'' || code[i] == '"' || code[i] == '`':
			i = skipToStringEnd(code, i, code[i])
		case i+1 < n && code[i] == '/' && code[i+1] == '/':
			i = skipLineComment(code, i)
			continue
		case i+1 < n && code[i] == '/' && code[i+1] == '*':
			i = skipBlockComment(code, i)
			continue
		}
		i++
	}
	return n
}

// parseIdentifier extracts a single identifier token starting at position i.
func parseIdentifier(code []byte, i int) (name string, next int) {
	n := len(code)
	if i >= n || !isByteIdentifierChar(code[i]) {
		return "", i
	}
	start := i
	for i < n && isByteIdentifierChar(code[i]) {
		i++
	}
	return string(code[start:i]), i
}

type parseState struct {
	code    []byte
	n       int
	imports []ExtractedSpecifier
}

func (s *parseState) add(module string, kind ImportKind) {
	if module == "" {
		return
	}
	s.imports = append(s.imports, ExtractedSpecifier{Specifier: module, Kind: kind})
}

// isTypeModifierAt tells `import type X from` apart from a default import named `type`.
func (s *parseState) isTypeModifierAt(i int) (int, bool) {
	if !hasWordAt(s.code, i, "type") {
		return i, false
	}
	j := skipSpacesAndComments(s.code, i+len("type"))
	if j >= s.n {
		return i, false
	}
	if hasWordAt(s.code, j, "from") {
		k := skipSpacesAndComments(s.code, j+len("from"))
		if k < s.n && isQuote(s.code[k]) {
			return i, false
		}
	}
	if s.code[j] == '{' || s.code[j] == '*' || isByteIdentifierChar(s.code[j]) {
		return j, true
	}
	return i, false
}

func (s *parseState) skipDeclareAmbientBlock(i int) (int, bool) {
	if !hasWordAt(s.code, i, "declare") {
		return i, false
	}

	j := skipSpaces(s.code, i+len("declare"))
	if !(hasWordAt(s.code, j, "module") || hasWordAt(s.code, j, "global") || hasWordAt(s.code, j, "namespace")) {
		return i, false
	}

	// Find the opening brace and skip to matching closing brace
	for j < s.n && s.code[j] != '{' && s.code[j] != ';' && s.code[j] != '\n' {
		if isQuote(s.code[j]) {
			j = skipToStringEnd(s.code, j, s.code[j])
			if j >= s.n || s.code[j] == '\n' {
				break
			}
		}
		j++
	}
	if j < s.n && s.code[j] == '{' {
		return skipBalancedBraces(s.code, j), true
	}
	return j, true
}

func (s *parseState) parseDynamicImport(i int) int {
	j := skipSpacesAndComments(s.code, i+len("import"))
	if j < s.n && s.code[j] == '(' {
		module, next, ok := parseCallArgument(s.code, j)
		if ok {
			s.add(module, ValueImport)
		}
		return next
	}
	return i + len("import")
}

func (s *parseState) parseImportStatement(i int) (int, bool) {
	if !hasWordAt(s.code, i, "import") {
		return i, false
	}

	start := i
	i += len("import")
	if i >= s.n {
		return i, true
	}
	if !(isWhiteSpace(s.code[i]) || s.code[i] == '{' || isQuote(s.code[i]) || s.code[i] == '*' || s.code[i] == '(' || s.code[i] == '/') {
		// import.meta and friends
		return i, true
	}

	i = skipSpacesAndComments(s.code, i)
	if i >= s.n {
		return i, true
	}
	if s.code[i] == '(' {
		return s.parseDynamicImport(start), true
	}

	kind := ValueImport
	if next, ok := s.isTypeModifierAt(i); ok {
		kind = TypeOnlyImport
		i = next
	}

	if isQuote(s.code[i]) {
		module, next := parseStringLiteral(s.code, i)
		s.add(module, kind)
		return next, true
	}

	if kind == ValueImport && s.code[i] == '{' && areAllImportsInBracesTypes(s.code, i) {
		kind = TypeOnlyImport
	}

	// import x = require('y')
	if isByteIdentifierChar(s.code[i]) && !hasWordAt(s.code, i, "from") {
		_, next := parseIdentifier(s.code, i)
		j := skipSpacesAndComments(s.code, next)
		if j < s.n && s.code[j] == '=' {
			j = skipSpacesAndComments(s.code, j+1)
			if hasWordAt(s.code, j, "require") {
				k := skipSpacesAndComments(s.code, j+len("require"))
				module, after, ok := parseCallArgument(s.code, k)
				if ok {
					s.add(module, kind)
				}
				return after, true
			}
			return j, true
		}
	}

	for i < s.n {
		switch {
		case s.code[i] == ';':
			return i, true
		case i+1 < s.n && s.code[i] == '/' && s.code[i+1] == '/':
			i = skipLineComment(s.code, i)
			continue
		case i+1 < s.n && s.code[i] == '/' && s.code[i+1] == '*':
			i = skipBlockComment(s.code, i)
			continue
		case atWordStart(s.code, i) && hasWordAt(s.code, i, "from"):
			j := skipSpacesAndComments(s.code, i+len("from"))
			if j < s.n && isQuote(s.code[j]) {
				module, next := parseStringLiteral(s.code, j)
				s.add(module, kind)
				return next, true
			}
			i += len("from")
			continue
		case atWordStart(s.code, i) && (hasWordAt(s.code, i, "import") || hasWordAt(s.code, i, "export")):
			// malformed statement, let the main loop pick up the next one
			return i, true
		}
		i++
	}
	return i, true
}

func (s *parseState) parseRequireStatement(i int) (int, bool) {
	if !hasWordAt(s.code, i, "require") {
		return i, false
	}
	i += len("require")
	// require.resolve('x') names a package as much as require('x') does
	if hasPrefixAt(s.code, i, ".resolve") && hasWordAt(s.code, i+1, "resolve") {
		i += len(".resolve")
	}
	j := skipSpacesAndComments(s.code, i)
	module, next, ok := parseCallArgument(s.code, j)
	if ok {
		s.add(module, ValueImport)
		return next, true
	}
	return i, true
}

func (s *parseState) parseExportStatement(i int) (int, bool) {
	if !hasWordAt(s.code, i, "export") {
		return i, false
	}

	i += len("export")
	if i >= s.n || !(isWhiteSpace(s.code[i]) || s.code[i] == '{' || s.code[i] == '*') {
		return i, true
	}
	i = skipSpacesAndComments(s.code, i)
	if i >= s.n {
		return i, true
	}

	kind := ValueImport
	if hasWordAt(s.code, i, "type") {
		j := skipSpacesAndComments(s.code, i+len("type"))
		if j >= s.n || (s.code[j] != '{' && s.code[j] != '*') {
			// `export type Alias = ...` declares a local type
			return j, true
		}
		kind = TypeOnlyImport
		i = j
	}

	switch s.code[i] {
	case '*':
		i = skipSpacesAndComments(s.code, i+1)
		if hasWordAt(s.code, i, "as") {
			i = skipSpacesAndComments(s.code, i+len("as"))
			if i < s.n && isQuote(s.code[i]) {
				_, i = parseStringLiteral(s.code, i)
			} else {
				_, i = parseIdentifier(s.code, i)
			}
			i = skipSpacesAndComments(s.code, i)
		}
	case '{':
		if kind == ValueImport && areAllImportsInBracesTypes(s.code, i) {
			kind = TypeOnlyImport
		}
		i = skipSpacesAndComments(s.code, skipBalancedBraces(s.code, i))
	default:
		// local declaration, keep scanning its body
		return i, true
	}

	if hasWordAt(s.code, i, "from") {
		j := skipSpacesAndComments(s.code, i+len("from"))
		if j < s.n && isQuote(s.code[j]) {
			module, next := parseStringLiteral(s.code, j)
			s.add(module, kind)
			return next, true
		}
	}
	return i, true
}

// ParseImports extracts every module request from JS/TS code: static imports,
// re-exports, require calls and literal dynamic imports.
func ParseImports(code []byte) []ExtractedSpecifier {
	state := parseState{
		code:    code,
		n:       len(code),
		imports: make([]ExtractedSpecifier, 0, 16),
	}
	i := 0
	n := state.n
	depth := 0 // brace depth: static import/export can only appear at depth 0

	for i < n {
		// Inside braces only import() and require() are possible.
		if depth > 0 {
			b := code[i]
			switch b {
			case '{':
				depth++
				i++
			case '}':
				depth--
				i++
			case '\'', '"', '`':
				i = skipToStringEnd(code, i, b)
				if i < n {
					i++ // advance past closing quote
				}
			case '/':
				if i+1 < n && code[i+1] == '/' {
					i = skipLineComment(code, i)
				} else if i+1 < n && code[i+1] == '*' {
					i = skipBlockComment(code, i)
				} else {
					i++
				}
			case 'i':
				if atWordStart(code, i) && hasWordAt(code, i, "import") {
					i = state.parseDynamicImport(i)
				} else {
					i++
				}
			case 'r':
				if atWordStart(code, i) {
					if next, ok := state.parseRequireStatement(i); ok {
						i = next
						continue
					}
				}
				i++
			default:
				i++
			}
			continue
		}

		i = skipSpaces(code, i)
		if i >= n {
			break
		}

		// skip string context
		if code[i] == '\'' || code[i] == '"' || code[i] == '`' {
			i = skipToStringEnd(code, i, code[i])
			if i < n {
				i++ // advance past closing quote
			}
			continue
		}

		// skip comments
		if i+1 < n && code[i] == '/' && code[i+1] == '/' {
			i = skipLineComment(code, i)
			continue
		}
		if i+1 < n && code[i] == '/' && code[i+1] == '*' {
			i = skipBlockComment(code, i)
			continue
		}

		if atWordStart(code, i) {
			switch code[i] {
			case 'd':
				if next, ok := state.skipDeclareAmbientBlock(i); ok {
					i = next
					continue
				}
			case 'i':
				if next, ok := state.parseImportStatement(i); ok {
					i = next
					continue
				}
			case 'e':
				if next, ok := state.parseExportStatement(i); ok {
					i = next
					continue
				}
			case 'r':
				if next, ok := state.parseRequireStatement(i); ok {
					i = next
					continue
				}
			}
		}

		if code[i] == '{' {
			depth++
		}
		i++
	}

	return state.imports
}

func ParseImportsForTests(code string) []ExtractedSpecifier {
	return ParseImports([]byte(code))
}

// ParseFile reads a source file and extracts its module requests.
func ParseFile(filePath string) ([]ExtractedSpecifier, error) {
	fileContent, err := os.ReadFile(DenormalizePathForOS(filePath))
	if err != nil {
		return nil, err
	}
	return ParseImports(fileContent), nil
}
