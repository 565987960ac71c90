package graph

import (
	"fmt"
	"log"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language identifies a programming language routed through the
// query-based extractor. Python is handled by the native visitor and
// does not appear here.
type Language string

const (
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
)

// roleTag is the closed set of capture roles a query may declare.
type roleTag int

const (
	roleName roleTag = iota + 1
	roleCall
	roleDep
	roleSymbol
)

// captureRole is the resolved role of one query capture. kind is set
// only when tag == roleSymbol.
type captureRole struct {
	tag  roleTag
	kind NodeKind
}

// resolveRole maps a capture name to its role. Unknown names are a
// registration error so the query and the extractor cannot drift
// apart silently.
func resolveRole(name string) (captureRole, error) {
	switch name {
	case "name":
		return captureRole{tag: roleName}, nil
	case "call":
		return captureRole{tag: roleCall}, nil
	case "dep":
		return captureRole{tag: roleDep}, nil
	case "function":
		return captureRole{tag: roleSymbol, kind: NodeKindFunction}, nil
	case "class":
		return captureRole{tag: roleSymbol, kind: NodeKindClass}, nil
	case "interface":
		return captureRole{tag: roleSymbol, kind: NodeKindInterface}, nil
	case "impl":
		return captureRole{tag: roleSymbol, kind: NodeKindImpl}, nil
	}
	return captureRole{}, fmt.Errorf("unknown capture role %q", name)
}

// Grammar pairs a tree-sitter language with its compiled match query.
type Grammar struct {
	Language Language
	lang     *tree_sitter.Language
	query    *tree_sitter.Query

	// roles is indexed by capture index within the compiled query.
	roles []captureRole
}

// Registry maps file extensions to grammars. Built once; Resolve is a
// pure lookup with no side effects.
type Registry struct {
	byExt map[string]*Grammar
}

// grammarSpec declares one language's grammar, query, and extensions.
type grammarSpec struct {
	language Language
	lang     *tree_sitter.Language
	query    string
	exts     []string
}

// NewRegistry attempts to load every supported grammar and compile its
// query. A language whose query fails to compile is omitted entirely
// (not a per-file error) and a warning is logged once.
func NewRegistry() *Registry {
	specs := []grammarSpec{
		{LangGo, tree_sitter.NewLanguage(tree_sitter_go.Language()), goQuery, []string{".go"}},
		{LangRust, tree_sitter.NewLanguage(tree_sitter_rust.Language()), rustQuery, []string{".rs"}},
		{LangTypeScript, tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()), typescriptQuery, []string{".ts"}},
		{LangTSX, tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()), tsxQuery, []string{".tsx"}},
		{LangJavaScript, tree_sitter.NewLanguage(tree_sitter_javascript.Language()), javascriptQuery, []string{".js", ".jsx"}},
	}

	r := &Registry{byExt: make(map[string]*Grammar)}
	for _, spec := range specs {
		g, err := compileGrammar(spec)
		if err != nil {
			log.Printf("registry: disabling %s: %v", spec.language, err)
			continue
		}
		for _, ext := range spec.exts {
			r.byExt[ext] = g
		}
	}
	return r
}

func compileGrammar(spec grammarSpec) (*Grammar, error) {
	query, qErr := tree_sitter.NewQuery(spec.lang, spec.query)
	if qErr != nil {
		return nil, fmt.Errorf("compile query: %w", qErr)
	}

	names := query.CaptureNames()
	roles := make([]captureRole, len(names))
	for i, name := range names {
		role, err := resolveRole(name)
		if err != nil {
			query.Close()
			return nil, err
		}
		roles[i] = role
	}

	return &Grammar{
		Language: spec.language,
		lang:     spec.lang,
		query:    query,
		roles:    roles,
	}, nil
}

// Resolve returns the grammar for a file extension, or nil when the
// extension is unroutable. Callers must skip the file rather than
// error.
func (r *Registry) Resolve(ext string) *Grammar {
	return r.byExt[ext]
}

// Languages returns the languages currently registered, for logging
// and tests. Order is unspecified.
func (r *Registry) Languages() []Language {
	seen := make(map[Language]bool)
	var out []Language
	for _, g := range r.byExt {
		if !seen[g.Language] {
			seen[g.Language] = true
			out = append(out, g.Language)
		}
	}
	return out
}
