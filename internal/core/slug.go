package core

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// fallbackSlugPrefix is used when a product name has no sluggable characters.
const fallbackSlugPrefix = "producto"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a product name into a URL slug:
// "Molde de Silicón (6 pzas)" -> "molde-de-silicon-6-pzas".
func Slugify(name string) string {
	s := strings.ToLower(stripAccents(name))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SlugAllocator hands out catalog-unique slugs for one import run.
//
// Every slug it returns, and every slug it learns is taken, is remembered
// so two rows with the same name in one run never collide even before
// either is persisted. An allocator must not be shared between runs.
type SlugAllocator struct {
	store ProductStore
	now   func() time.Time

	taken map[string]bool
	next  map[string]int
}

// NewSlugAllocator returns an allocator that checks store for existing slugs.
func NewSlugAllocator(store ProductStore) *SlugAllocator {
	return &SlugAllocator{
		store: store,
		now:   time.Now,
		taken: make(map[string]bool),
		next:  make(map[string]int),
	}
}

// Allocate returns a free slug for name, trying base, base-2, base-3, ...
func (a *SlugAllocator) Allocate(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = fmt.Sprintf("%s-%d", fallbackSlugPrefix, a.now().UnixMilli())
	}

	suffix := a.next[base]
	for {
		candidate := base
		if suffix >= 2 {
			candidate = fmt.Sprintf("%s-%d", base, suffix)
		}

		if !a.taken[candidate] {
			exists, err := a.store.SlugExists(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("check slug %q: %w", candidate, err)
			}
			a.taken[candidate] = true
			if !exists {
				a.next[base] = nextSuffix(suffix)
				return candidate, nil
			}
		}

		suffix = nextSuffix(suffix)
	}
}

// nextSuffix steps 0 -> 2 -> 3 -> ...; the bare base counts as 1.
func nextSuffix(s int) int {
	if s < 2 {
		return 2
	}
	return s + 1
}
