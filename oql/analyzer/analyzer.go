package analyzer

import (
	"fmt"
	"os"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/oqlc/go-oql-compiler/oql"
	"github.com/oqlc/go-oql-compiler/oql/calculus"
)

const debugAnalyzerKey = "DEBUG_ANALYZER"

const maxAnalysisIterations = 1000

// ErrMaxAnalysisIters is thrown when the analysis iterations are exceeded
var ErrMaxAnalysisIters = errors.NewKind("exceeded max analysis iterations (%d)")

// ErrInAnalysis is thrown for generic analyzer errors
var ErrInAnalysis = errors.NewKind("error in analysis: %s")

// Builder provides an easy way to generate Analyzer with custom rules and options.
type Builder struct {
	preRules  []Rule
	postRules []Rule
	world     *oql.World
	debug     bool
}

// NewBuilder creates a new Builder from a specific catalog.
// This builder allow us add custom Rules and modify some internal properties.
func NewBuilder(w *oql.World) *Builder {
	return &Builder{world: w}
}

// WithDebug activates debug on the Analyzer.
func (ab *Builder) WithDebug() *Builder {
	ab.debug = true

	return ab
}

// AddPreRule adds a new rule to the analyzer before the standard desugaring rules.
func (ab *Builder) AddPreRule(name string, fn RuleFunc) *Builder {
	ab.preRules = append(ab.preRules, Rule{name, fn})

	return ab
}

// AddPostRule adds a new rule to the analyzer after the canonicalization rules.
func (ab *Builder) AddPostRule(name string, fn RuleFunc) *Builder {
	ab.postRules = append(ab.postRules, Rule{name, fn})

	return ab
}

// Build creates a new Analyzer using all previous data setted to the Builder
func (ab *Builder) Build() *Analyzer {
	_, debug := os.LookupEnv(debugAnalyzerKey)
	var batches = []*Batch{
		{
			Desc:       "pre-desugar",
			Iterations: maxAnalysisIterations,
			Rules:      ab.preRules,
		},
		{
			Desc:       "desugar",
			Iterations: maxAnalysisIterations,
			Rules:      DesugarRules,
		},
		{
			Desc:       "normalize",
			Iterations: maxAnalysisIterations,
			Rules:      NormalizeRules,
		},
		{
			Desc:       "canonicalize",
			Iterations: 1,
			Rules:      CanonicalizeRules,
		},
		{
			Desc:       "post-canonicalize",
			Iterations: maxAnalysisIterations,
			Rules:      ab.postRules,
		},
	}

	return &Analyzer{
		Debug:    debug || ab.debug,
		debugCtx: make([]string, 0),
		Batches:  batches,
		World:    ab.world,
		syms:     oql.NewSymbolRegistry(),
	}
}

// Analyzer analyzes calculus trees: it establishes the semantic analysis,
// then applies the desugaring, normalization and canonicalization batches,
// re-establishing the analysis after every rewrite.
type Analyzer struct {
	// Whether to log various debugging messages
	Debug bool
	// Whether to output the tree at each step of the analyzer
	Verbose  bool
	debugCtx []string
	// Batches of Rules to apply.
	Batches []*Batch
	// World is the catalog trees are compiled against.
	World *oql.World

	// syms names the identifiers introduced by rewrites. Rewrite identifiers
	// carry a $ prefix so they can never collide with user identifiers.
	syms *oql.SymbolRegistry
}

// NewDefault creates a default Analyzer instance with all default Rules and configuration.
// To add custom rules, the easiest way is use the Builder.
func NewDefault(w *oql.World) *Analyzer {
	return NewBuilder(w).Build()
}

// FreshIdn returns a fresh rewrite identifier.
func (a *Analyzer) FreshIdn() string {
	return "$" + a.syms.Fresh("v").String()
}

// FreshMonoidVar returns a fresh monoid variable for rewrites. The $ prefix
// keeps its symbol disjoint from the ones the semantic analysis creates.
func (a *Analyzer) FreshMonoidVar() *oql.MonoidVariable {
	return &oql.MonoidVariable{Sym: a.syms.Fresh("$m")}
}

// Log prints an INFO message to stdout with the given message and args
// if the analyzer is in debug mode.
func (a *Analyzer) Log(msg string, args ...interface{}) {
	if a != nil && a.Debug {
		if len(a.debugCtx) > 0 {
			ctx := strings.Join(a.debugCtx, "/")
			logrus.Infof("%s: "+msg, append([]interface{}{ctx}, args...)...)
		} else {
			logrus.Infof(msg, args...)
		}
	}
}

// LogExp prints the expression given if Verbose logging is enabled.
func (a *Analyzer) LogExp(e calculus.Exp) {
	if a != nil && e != nil && a.Verbose {
		if len(a.debugCtx) > 0 {
			ctx := strings.Join(a.debugCtx, "/")
			fmt.Printf("%s: %s\n", ctx, e)
		} else {
			fmt.Printf("%s\n", e)
		}
	}
}

// PushDebugContext pushes the given context string onto the context stack, to use when logging debug messages.
func (a *Analyzer) PushDebugContext(msg string) {
	if a != nil {
		a.debugCtx = append(a.debugCtx, msg)
	}
}

// PopDebugContext pops a context message off the context stack.
func (a *Analyzer) PopDebugContext() {
	if a != nil && len(a.debugCtx) > 0 {
		a.debugCtx = a.debugCtx[:len(a.debugCtx)-1]
	}
}

// Analyze establishes the semantic analysis of the tree and, when it is
// error free, rewrites the tree to canonical form. The returned Sem belongs
// to the returned tree. User errors are reported through the Sem; an error
// return means a rewrite violated an internal invariant.
func (a *Analyzer) Analyze(ctx *oql.Context, root calculus.Exp) (calculus.Exp, *Sem, error) {
	span, ctx := ctx.Span("analyze", opentracing.Tags{
		"calculus": root.String(),
	})
	defer span.Finish()

	a.Log("starting analysis of expression of type: %T", root)
	sem := NewSem(a.World)
	sem.Analyze(root)
	if !sem.Errs.Empty() {
		a.Log("analysis found %d errors, skipping rewrites", len(sem.Errs.List()))
		return root, sem, nil
	}

	prev := root
	var err error
	for _, batch := range a.Batches {
		a.PushDebugContext(batch.Desc)
		prev, sem, err = batch.Eval(ctx, a, prev, sem)
		a.PopDebugContext()
		if ErrMaxAnalysisIters.Is(err) {
			a.Log(err.Error())
			continue
		}
		if err != nil {
			return nil, sem, err
		}
	}

	return prev, sem, nil
}
