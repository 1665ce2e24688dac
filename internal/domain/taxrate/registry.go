package taxrate

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/types"
)

// maxGroupDepth caps group nesting. Real tax law rarely nests composite
// taxes beyond two levels; four leaves headroom without letting broken
// configuration recurse far.
const maxGroupDepth = 4

const stackCacheTTL = 5 * time.Minute

// Registry holds a validated, read-only set of tax definitions. All
// cross-definition invariants (unique codes, child existence,
// acyclicity, nesting depth) are checked once at construction so the
// engine can assume a well-formed graph at compute time.
type Registry struct {
	defs       map[string]*TaxDefinition
	stackCache *gocache.Cache
}

// NewRegistry validates the definition set and builds the registry.
func NewRegistry(defs []*TaxDefinition) (*Registry, error) {
	byCode := make(map[string]*TaxDefinition, len(defs))

	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := byCode[def.Code]; exists {
			return nil, ierr.NewError("duplicate tax definition code").
				WithHintf("Tax definition code '%s' is declared more than once", def.Code).
				Mark(ierr.ErrValidation)
		}
		byCode[def.Code] = def
	}

	r := &Registry{
		defs:       byCode,
		stackCache: gocache.New(stackCacheTTL, 2*stackCacheTTL),
	}

	if err := r.validateGraph(); err != nil {
		return nil, err
	}

	return r, nil
}

// validateGraph checks that every group child exists and that the
// child graph is acyclic within the depth bound.
func (r *Registry) validateGraph() error {
	for _, def := range r.defs {
		if def.Kind != types.TaxKindGroup {
			continue
		}
		if err := r.walkGroup(def, []string{def.Code}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) walkGroup(def *TaxDefinition, path []string) error {
	if len(path) > maxGroupDepth {
		return ierr.NewError("tax group nesting too deep").
			WithHintf("Group chain %s exceeds the maximum nesting depth of %d", strings.Join(path, " -> "), maxGroupDepth).
			Mark(ierr.ErrValidation)
	}

	for _, childCode := range def.ChildCodes {
		child, ok := r.defs[childCode]
		if !ok {
			return ierr.NewError("unknown child tax code").
				WithHintf("Group '%s' references undefined tax '%s'", def.Code, childCode).
				Mark(ierr.ErrValidation)
		}

		for _, seen := range path {
			if seen == childCode {
				return ierr.NewError("cyclic tax definition").
					WithHintf("Tax definition cycle: %s -> %s", strings.Join(path, " -> "), childCode).
					Mark(ierr.ErrCyclicDefinition)
			}
		}

		if child.Kind == types.TaxKindGroup {
			if err := r.walkGroup(child, append(path, childCode)); err != nil {
				return err
			}
		}
	}

	return nil
}

// Get returns the definition for a code.
func (r *Registry) Get(code string) (*TaxDefinition, error) {
	def, ok := r.defs[code]
	if !ok {
		return nil, ierr.NewError("tax definition not found").
			WithHintf("No tax definition registered for code '%s'", code).
			Mark(ierr.ErrNotFound)
	}
	return def, nil
}

// All returns every registered definition.
func (r *Registry) All() []*TaxDefinition {
	out := make([]*TaxDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	SortBySequence(out)
	return out
}

// ResolveStack resolves an ordered tax stack for the given codes,
// sorted by sequence. Groups stay intact here; the engine expands them
// during the walk. Resolved stacks are cached by code set.
func (r *Registry) ResolveStack(codes []string) ([]*TaxDefinition, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	cacheKey := strings.Join(codes, "|")
	if cached, ok := r.stackCache.Get(cacheKey); ok {
		return cached.([]*TaxDefinition), nil
	}

	stack := make([]*TaxDefinition, 0, len(codes))
	for _, code := range codes {
		def, err := r.Get(code)
		if err != nil {
			return nil, err
		}
		stack = append(stack, def)
	}
	SortBySequence(stack)

	r.stackCache.Set(cacheKey, stack, gocache.DefaultExpiration)
	return stack, nil
}

// ResolveChildren returns a group's children in the group's declared
// internal order.
func (r *Registry) ResolveChildren(group *TaxDefinition) ([]*TaxDefinition, error) {
	children := make([]*TaxDefinition, 0, len(group.ChildCodes))
	for _, code := range group.ChildCodes {
		child, err := r.Get(code)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}
