// Package path composes render passes into recipes, compiles them into
// validated plans against a backend's capability set, and executes them in
// order — the render-path composition and executor component (spec.md
// §4.7). It cycles (path preset, technique preset) pairs the way the
// teacher's demo apps cycle shading modes via a bound key.
//
// Grounded on the teacher's render/render.go scene bracketing
// (begin/end-frame ordering) and config.go's functional-options
// NewEngine, generalized from a single fixed pipeline into an arbitrary
// ordered pass chain resolved from a factory registry.
package path

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kestrelgfx/forge/backend"
	"github.com/kestrelgfx/forge/job"
	"github.com/kestrelgfx/forge/pass"
	"github.com/kestrelgfx/forge/registry"
)

// RuntimeState is re-exported from package pass so recipes and
// applications name one type regardless of which package they import it
// through.
type RuntimeState = pass.RuntimeState

// TechniqueMode is re-exported from package pass for the same reason.
type TechniqueMode = pass.TechniqueMode

const (
	ModeForward           = pass.ModeForward
	ModeForwardPlus       = pass.ModeForwardPlus
	ModeDeferred          = pass.ModeDeferred
	ModeTiledDeferred     = pass.ModeTiledDeferred
	ModeClusteredForward  = pass.ModeClusteredForward
)

// CapabilityPredicate reports whether a backend's CapabilitySet supports a
// recipe; recipes with no hard requirement pass a predicate that always
// returns true.
type CapabilityPredicate func(caps backend.CapabilitySet) bool

// AlwaysCapable is the default predicate for recipes with no special
// requirement.
func AlwaysCapable(backend.CapabilitySet) bool { return true }

// RequiresDepthAttachment gates a recipe on the backend reporting a depth
// attachment feature, matching scenario S5's capability-gate test.
func RequiresDepthAttachment(caps backend.CapabilitySet) bool { return caps.Features.DepthAttachment }

// Recipe is a named, ordered list of pass ids plus runtime defaults
// describing one render path.
type Recipe struct {
	Name       string
	Technique  TechniqueMode
	PassIDs    []string
	TileSize   int
	Capability CapabilityPredicate
	Runtime    RuntimeState
	// Handles binds symbolic resource names ("hdr", "ldr", "shadow", ...)
	// used by DescribeIO to already-allocated registry handles.
	Handles map[string]registry.RTHandle
}

// ForwardRecipe, ForwardPlusRecipe, DeferredRecipe, TiledDeferredRecipe and
// ClusteredForwardRecipe are the five built-in path presets the executor
// cycles through (scenario S4).
var (
	ForwardRecipe = Recipe{
		Name:      "forward",
		Technique: ModeForward,
		PassIDs:   []string{pass.IDShadowMap, pass.IDPBRForward, pass.IDTonemap},
		Runtime:   pass.DefaultRuntimeState,
		Capability: AlwaysCapable,
	}
	ForwardPlusRecipe = Recipe{
		Name:      "forward_plus",
		Technique: ModeForwardPlus,
		PassIDs:   []string{pass.IDDepthPrepass, pass.IDLightCulling, pass.IDPBRForwardPlus, pass.IDTonemap},
		TileSize:  16,
		Runtime:   pass.DefaultRuntimeState,
		Capability: RequiresDepthAttachment,
	}
	DeferredRecipe = Recipe{
		Name:      "deferred",
		Technique: ModeDeferred,
		PassIDs:   []string{pass.IDDepthPrepass, pass.IDGBuffer, pass.IDDeferredLighting, pass.IDTonemap},
		Runtime:   pass.DefaultRuntimeState,
		Capability: RequiresDepthAttachment,
	}
	TiledDeferredRecipe = Recipe{
		Name:      "tiled_deferred",
		Technique: ModeTiledDeferred,
		PassIDs:   []string{pass.IDDepthPrepass, pass.IDLightCulling, pass.IDGBuffer, pass.IDDeferredLightingTiled, pass.IDTonemap},
		TileSize:  16,
		Runtime:   pass.DefaultRuntimeState,
		Capability: RequiresDepthAttachment,
	}
	ClusteredForwardRecipe = Recipe{
		Name:      "clustered_forward",
		Technique: ModeClusteredForward,
		PassIDs:   []string{pass.IDDepthPrepass, pass.IDClusterBuild, pass.IDClusterLightAssign, pass.IDPBRForwardClustered, pass.IDTonemap},
		Runtime:   pass.DefaultRuntimeState,
		Capability: RequiresDepthAttachment,
	}
)

// CyclePresets is the scenario-S4 cycle order: Forward → ForwardPlus →
// Deferred → TiledDeferred → ClusteredForward → Forward.
var CyclePresets = []Recipe{ForwardRecipe, ForwardPlusRecipe, DeferredRecipe, TiledDeferredRecipe, ClusteredForwardRecipe}

// RecipeByName looks up a built-in preset by its Recipe.Name, for
// applications that select a path preset from a config file.
func RecipeByName(name string) (Recipe, bool) {
	for _, r := range CyclePresets {
		if r.Name == name {
			return r, true
		}
	}
	return Recipe{}, false
}

// Plan is the result of compiling a Recipe against a factory registry and
// a backend's capability set: a resolved ordered pass chain plus the
// diagnostics compilation produced.
type Plan struct {
	ID            string // random, one per compilation, for log correlation only.
	Recipe        Recipe
	Passes        []compiledPass
	MissingPasses []string
	IOWarnings    []string
	IOErrors      []string
	Valid         bool
	Fingerprint   string // deterministic content hash; identical for identical (recipe, capability set) inputs.
}

type compiledPass struct {
	id      string
	enabled bool
	p       pass.Pass
}

// Option configures an Executor via the functional-options pattern, the
// same shape the teacher's config.go uses for NewEngine.
type Option func(*Executor)

// WithLogger attaches a *zap.Logger; a nil logger (or omitting this
// option) defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithJobs attaches a job.System new passes run against; defaults to
// job.Inline{}.
func WithJobs(j job.System) Option {
	return func(e *Executor) { e.jobs = j }
}

// WithStrict enables strict validation: missing pass factories and IO
// graph warnings become plan-invalidating errors (spec.md §7).
func WithStrict(strict bool) Option {
	return func(e *Executor) { e.strict = strict }
}

// Executor holds zero or more recipes and the active compiled plan,
// mirroring spec.md §4.7's apply_index/execute_plan contract.
type Executor struct {
	log      *zap.Logger
	jobs     job.System
	strict   bool
	backend  backend.Backend
	registry *pass.Registry

	recipes    []Recipe
	activeIdx  int
	activePlan *Plan

	Stats ExecutionStats
}

// ExecutionStats accumulates across frames; PassCount/DrawCalls/CulledObjects
// reset each ExecutePlan call, FramesExecuted/FailedFrames are running totals.
type ExecutionStats struct {
	PassCount      int
	DrawCalls      int
	CulledObjects  int
	FramesExecuted int
	FailedFrames   int
}

// NewExecutor creates an Executor over be using the built-in pass factory
// registry, with recipes installed via AddRecipe.
func NewExecutor(be backend.Backend, opts ...Option) *Executor {
	e := &Executor{
		log:      zap.NewNop(),
		jobs:     job.Inline{},
		backend:  be,
		registry: pass.NewBuiltinRegistry(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// PassRegistry returns the factory registry backing this executor, so an
// application can register additional pass ids before activating a recipe.
func (e *Executor) PassRegistry() *pass.Registry { return e.registry }

// AddRecipe appends r to the executor's recipe list and returns its index.
func (e *Executor) AddRecipe(r Recipe) int {
	e.recipes = append(e.recipes, r)
	return len(e.recipes) - 1
}

// Recipes returns the installed recipe list.
func (e *Executor) Recipes() []Recipe { return e.recipes }

// ActivePlan returns the currently compiled plan, or nil if ApplyIndex has
// never succeeded.
func (e *Executor) ActivePlan() *Plan { return e.activePlan }

// ApplyIndex activates recipe i: capability-gates it, constructs every
// pass from the factory registry, validates the IO graph, and — if valid
// (or non-strict) — installs the resulting Plan as active. Returns false
// if the recipe was rejected.
func (e *Executor) ApplyIndex(i int) bool {
	if i < 0 || i >= len(e.recipes) {
		return false
	}
	r := e.recipes[i]
	plan := e.compilePlan(r)
	if !plan.Valid {
		e.log.Warn("recipe rejected", zap.String("recipe", r.Name), zap.Strings("missing_passes", plan.MissingPasses), zap.Strings("io_errors", plan.IOErrors))
		return false
	}
	e.activeIdx = i
	e.activePlan = plan
	return true
}

// ApplyFallbackTechniquePipeline activates the first recipe in the
// executor's list whose capability predicate accepts the backend,
// matching spec.md §7's capability-mismatch recovery path.
func (e *Executor) ApplyFallbackTechniquePipeline() bool {
	caps := e.backend.Capabilities()
	for i, r := range e.recipes {
		if r.Capability == nil || r.Capability(caps) {
			if e.ApplyIndex(i) {
				return true
			}
		}
	}
	return false
}

// compilePlan runs the four activation steps from spec.md §4.7.
func (e *Executor) compilePlan(r Recipe) *Plan {
	plan := &Plan{ID: uuid.NewString(), Recipe: r}

	// 1. Capability gate.
	caps := e.backend.Capabilities()
	pred := r.Capability
	if pred == nil {
		pred = AlwaysCapable
	}
	if !pred(caps) {
		plan.Valid = false
		return plan
	}

	// 2. Pass construction.
	written := map[string]bool{}
	for name := range r.Handles {
		written[name] = true // externally bound resources count as written.
	}
	for _, id := range r.PassIDs {
		p, ok := e.registry.New(id)
		if !ok {
			plan.MissingPasses = append(plan.MissingPasses, id)
			continue
		}
		plan.Passes = append(plan.Passes, compiledPass{id: id, enabled: true, p: p})
	}
	if len(plan.MissingPasses) > 0 && e.strict {
		plan.Valid = false
		return plan
	}

	// 3. IO graph validation.
	for idx := range plan.Passes {
		cp := &plan.Passes[idx]
		reads, writes := cp.p.DescribeIO()
		for _, ref := range reads {
			if !written[ref.Name] {
				msg := fmt.Sprintf("%s reads %q before any write", cp.id, ref.Name)
				if e.strict {
					plan.IOErrors = append(plan.IOErrors, msg)
				} else {
					plan.IOWarnings = append(plan.IOWarnings, msg)
				}
			}
		}
		for _, ref := range writes {
			if written[ref.Name] {
				msg := fmt.Sprintf("%s aliases %q without an intervening read", cp.id, ref.Name)
				if e.strict {
					plan.IOErrors = append(plan.IOErrors, msg)
				} else {
					plan.IOWarnings = append(plan.IOWarnings, msg)
				}
			}
			written[ref.Name] = true
		}
	}
	if len(plan.IOErrors) > 0 {
		plan.Valid = false
		return plan
	}

	// 4. Plan fingerprint.
	plan.Fingerprint = fingerprint(r, plan.Passes)
	plan.Valid = true
	return plan
}

// fingerprint hashes the ordered pass ids and each pass's contract into a
// stable digest, so identical (recipe, capability set) inputs produce an
// identical fingerprint (testable property 4, plan determinism).
func fingerprint(r Recipe, passes []compiledPass) string {
	h := sha256.New()
	fmt.Fprintf(h, "recipe:%s|technique:%d|", r.Name, r.Technique)
	for _, cp := range passes {
		c := cp.p.DescribeContract()
		fmt.Fprintf(h, "pass:%s|role:%d|depth:%v|light:%v|", cp.id, c.Role, c.RequiresDepthPrepass, c.RequiresLightCulling)
		for _, s := range c.Semantics {
			fmt.Fprintf(h, "sem:%d:%s:%s:%s|", s.Access, s.Tag, s.Domain, s.Label)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ExecutePlan runs the active plan's passes in order, skipping any whose
// ForwardPlusState precondition is unmet. A pass's returned error aborts the
// frame immediately: passes are not independent (a later pass's Contract.
// Requires* gate reads the ForwardPlusState an earlier pass just set), so
// fanning them out under one errgroup would buy nothing — each pass needs
// the previous one's result before it can even decide whether to run.
func (e *Executor) ExecutePlan(fp *pass.FrameParams) error {
	if e.activePlan == nil || !e.activePlan.Valid {
		return fmt.Errorf("path: no active plan")
	}
	ctx := pass.NewContext(e.jobs, e.log, e.backend)
	ctx.FP.Reset()
	fp.Runtime = e.activePlan.Recipe.Runtime
	fp.Resources.Handles = e.activePlan.Recipe.Handles

	for _, cp := range e.activePlan.Passes {
		c := cp.p.DescribeContract()
		if c.RequiresDepthPrepass && !ctx.FP.DepthPrepassValid {
			continue
		}
		if c.RequiresLightCulling && !ctx.FP.LightCullingValid {
			continue
		}
		if err := cp.p.Execute(ctx, fp); err != nil {
			e.Stats.FailedFrames++
			return err
		}
	}

	e.Stats.PassCount = ctx.Debug.PassCount
	e.Stats.DrawCalls = ctx.Debug.DrawCalls
	e.Stats.CulledObjects = ctx.Debug.CulledObjects
	e.Stats.FramesExecuted++
	return nil
}

// Cycle advances to the next recipe in CyclePresets (installing it first
// if the executor has no recipes yet) and applies it, matching scenario
// S4's cycle operation: Forward → ForwardPlus → Deferred → TiledDeferred →
// ClusteredForward → Forward.
func (e *Executor) Cycle() bool {
	if len(e.recipes) == 0 {
		for _, r := range CyclePresets {
			e.AddRecipe(r)
		}
	}
	next := (e.activeIdx + 1) % len(e.recipes)
	return e.ApplyIndex(next)
}
