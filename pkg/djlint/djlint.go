// Package djlint is the core of the template linter and reformatter: a
// lossless tokenizer over HTML mixed with template dialects, an indentation
// engine, and a rule engine. All three agree on one token stream.
//
// The package holds no global state. Catalogs and configurations are built
// once and shared read-only, which is what makes concurrent per-file
// processing safe.
package djlint

// Reformat tokenizes source and renders it in canonical layout, returning
// the text plus any structural anomalies found along the way.
func Reformat(source string, cfg Config) (string, []Diagnostic) {
	cfg = cfg.withDefaults()
	f := NewFormatter(cfg)
	out := f.Reformat(Tokenize(source, cfg.Dialects))
	return out, f.Diagnostics()
}

// Lint tokenizes source and evaluates the catalog against it.
func Lint(source string, catalog *Catalog, cfg Config) []Diagnostic {
	cfg = cfg.withDefaults()
	engine := NewEngine(catalog, cfg)
	return engine.Lint(source, Tokenize(source, cfg.Dialects))
}
