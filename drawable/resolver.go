package drawable

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	"github.com/mwantia/cncmaps/data"
)

// Resolver maps type names to drawables, one collection per category.
// Lookups search the categories in the order of Categories.
type Resolver struct {
	mu          sync.RWMutex
	collections [len(Categories)]*btree.Map[string, *Drawable]
}

func NewResolver() *Resolver {
	r := &Resolver{}
	for i := range r.collections {
		r.collections[i] = btree.NewMap[string, *Drawable](0)
	}
	return r
}

func (r *Resolver) collection(category Category) (*btree.Map[string, *Drawable], error) {
	if category < 0 || int(category) >= len(r.collections) {
		return nil, fmt.Errorf("%w: category %d", data.ErrInvalid, category)
	}
	return r.collections[category], nil
}

// Register adds d under name to category. A name is registered at most
// once per category.
func (r *Resolver) Register(name string, category Category, d *Drawable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	collection, err := r.collection(category)
	if err != nil {
		return err
	}

	key := strings.ToUpper(name)
	if _, exists := collection.Get(key); exists {
		return fmt.Errorf("%w: %s '%s'", data.ErrExist, category, name)
	}

	collection.Set(key, d)
	return nil
}

// Lookup returns the drawable of name from the first category holding it.
func (r *Resolver) Lookup(name string) (*Drawable, Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToUpper(name)
	for _, category := range Categories {
		if d, ok := r.collections[category].Get(key); ok {
			return d, category, true
		}
	}
	return nil, Tile, false
}

// Drawable returns the drawable of name or a not found error of kind
// drawable.
func (r *Resolver) Drawable(name string) (*Drawable, error) {
	d, _, ok := r.Lookup(name)
	if !ok {
		return nil, data.NewNotFound(data.KindDrawable, name)
	}
	return d, nil
}

func (r *Resolver) Len(category Category) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	collection, err := r.collection(category)
	if err != nil {
		return 0
	}
	return collection.Len()
}

// Names returns the registered names of category in sorted order.
func (r *Resolver) Names(category Category) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	collection, err := r.collection(category)
	if err != nil {
		return nil
	}
	return collection.Keys()
}
