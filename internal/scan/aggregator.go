package scan

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/codescope-io/codescope/internal/detect"
	"github.com/codescope-io/codescope/internal/graph"
)

// Scanner runs the full pipeline over a tree and memoizes results by
// content digest. Callers must serialize concurrent Scan calls that
// share one Scanner; the cache assumes a single writer.
type Scanner struct {
	engine  *graph.Engine
	cache   *Cache
	vcs     VCS
	collect CollectOptions
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithVCS replaces the exec-git collaborator, mainly for tests and
// non-repo trees.
func WithVCS(vcs VCS) Option {
	return func(s *Scanner) { s.vcs = vcs }
}

// WithCache replaces the default result cache.
func WithCache(cache *Cache) Option {
	return func(s *Scanner) { s.cache = cache }
}

// WithCollectOptions sets the file-walk policy.
func WithCollectOptions(opts CollectOptions) Option {
	return func(s *Scanner) { s.collect = opts }
}

func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		engine: graph.NewEngine(),
		cache:  NewCache(defaultCacheSize),
		vcs:    ExecGit{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan analyzes the tree rooted at root. The walk happens exactly
// once; everything downstream works off the in-memory sources. On a
// digest hit the stored result is returned without touching a parser.
func (s *Scanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	sources, err := CollectSources(root, s.collect)
	if err != nil {
		return nil, fmt.Errorf("collect sources: %w", err)
	}

	digest := Digest(sources)
	if cached, ok := s.cache.Get(digest); ok {
		log.Printf("scan: cache hit for %s", digest[:12])
		return cached, nil
	}

	var (
		gitSignals  GitSignals
		vcsFindings []graph.Finding
		deps        map[string][]string
		codeGraph   graph.CodeGraph
		findings    []graph.Finding
	)

	// Three analyzer phases fan out; per-file parsing inside the
	// code-intel phase stays sequential.
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		signals, signalFindings, vcsErr := s.vcs.Signals(groupCtx, root)
		if vcsErr != nil {
			log.Printf("scan: vcs signals: %v", vcsErr)
			return nil
		}
		gitSignals = signals
		vcsFindings = signalFindings
		return nil
	})

	group.Go(func() error {
		deps = ParseManifests(sources)
		return nil
	})

	group.Go(func() error {
		g, f, intelErr := s.engine.AnalyzeSources(groupCtx, sources)
		if intelErr != nil {
			return intelErr
		}
		codeGraph = g
		findings = f
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	findings = append(findings, detect.DetectDuplicates(sources)...)
	findings = append(findings, detect.DetectFunctionLength(codeGraph)...)
	findings = append(findings, detect.DetectFileLength(sources)...)
	findings = append(findings, detect.DetectCognitiveComplexity(codeGraph, sources)...)

	// Merge order: code intel, manifests, VCS.
	findings = append(findings, DetectArchBloat(deps, sources)...)
	findings = append(findings, vcsFindings...)

	languages, primary := LanguageCensus(sources)

	result := &ScanResult{
		Languages:       languages,
		PrimaryLanguage: primary,
		Dependencies:    deps,
		Frameworks:      DetectFrameworks(deps),
		CodeGraph:       codeGraph,
		Findings:        findings,
		HealthSignals: map[string]any{
			"fileCount":  len(sources),
			"gitSignals": gitSignals,
		},
		Verdict: detect.ComputeVerdict(findings),
	}

	s.cache.Add(digest, result)
	return result, nil
}
