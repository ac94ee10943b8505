package composer

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/pthm/composer/lib/metrics"
	"github.com/rs/zerolog"
)

const (
	// RootType is the built-in fragment type registered by New. It exposes a
	// single children slot and renders its children without a wrapper.
	RootType = "UserInterface"

	// DefaultKey is the identity key used for a top-level render.
	DefaultKey = "none"

	// DefaultMaxDepth bounds description nesting.
	DefaultMaxDepth = 256
)

// Option configures a Composer.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	metrics  *metrics.Collector
	maxDepth int
	noRoot   bool
}

// WithLogger sets the logger used for diagnostics (dropped nodes, duplicate
// registrations). Defaults to a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithMaxDepth sets the maximum nesting depth. Nodes nested deeper render to
// nothing. Values below 1 select DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// WithoutRootType skips registration of the built-in RootType.
func WithoutRootType() Option {
	return func(o *options) {
		o.noRoot = true
	}
}

// Composer is the catalog of renderable component types.
//
// A composer is assembled once at startup and then shared read-only by the
// protocol and server layers:
//
//	c := composer.New(composer.WithLogger(logger)).
//	    Register("Text", composer.NewType(toolkit.Text()).WithAttribute("text", composer.Text())).
//	    Register("Stack", composer.NewType(toolkit.Stack()).WithChildren())
//
// Rendering never fails. Unknown types, undeclared attributes and undeclared
// slots degrade to "nothing here" instead of an error.
type Composer struct {
	mu       sync.RWMutex
	types    map[string]*ComponentType
	maxDepth int
	logger   zerolog.Logger
	metrics  *metrics.Collector
}

// New creates a composer. Unless WithoutRootType is given, RootType is
// registered.
func New(opts ...Option) *Composer {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxDepth < 1 {
		o.maxDepth = DefaultMaxDepth
	}

	c := &Composer{
		types:    make(map[string]*ComponentType),
		maxDepth: o.maxDepth,
		logger:   o.logger,
		metrics:  o.metrics,
	}
	if !o.noRoot {
		c.Register(RootType, NewType(Fragment(DefaultSlot)).WithChildren())
	}
	return c
}

// Register adds a component type under name, replacing any previous entry
// with the same name. Panics if t is nil or has no primitive.
func (c *Composer) Register(name string, t *ComponentType) *Composer {
	if t == nil || t.primitive == nil {
		panic(fmt.Sprintf("composer: component type %q has no primitive", name))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.types[name]; exists {
		c.logger.Warn().Str("type", name).Msg("component type re-registered, replacing previous entry")
	}
	c.types[name] = t
	c.metrics.SetTypes(len(c.types))
	return c
}

// Lookup returns the component type registered under name.
func (c *Composer) Lookup(name string) (*ComponentType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[name]
	return t, ok
}

// Names returns the registered type names, sorted.
func (c *Composer) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaxDepth returns the nesting limit.
func (c *Composer) MaxDepth() int {
	return c.maxDepth
}

// Catalog serializes every registered type.
func (c *Composer) Catalog() CatalogSchema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	components := make(map[string]ComponentSchema, len(c.types))
	for name, t := range c.types {
		components[name] = t.Schema()
	}
	return CatalogSchema{Components: components}
}

// Render renders desc into a UI node, or nil when the description's type is
// not registered.
//
// The walk is depth-first and pre-order. Each child in a slot is rendered
// with the key slotName+index; nil children are kept in place so primitives
// see the same positions the host sent.
func (c *Composer) Render(desc Description, key string) templ.Component {
	start := time.Now()

	c.mu.RLock()
	node := c.render(desc, key, 0)
	c.mu.RUnlock()

	c.metrics.RenderPass(time.Since(start))
	return node
}

func (c *Composer) render(desc Description, key string, depth int) templ.Component {
	if depth >= c.maxDepth {
		c.logger.Warn().
			Str("type", desc.Type).
			Str("key", key).
			Int("max_depth", c.maxDepth).
			Msg("description nested too deeply, dropping node")
		c.metrics.NodeDropped(metrics.ReasonDepthExceeded)
		return nil
	}

	t, ok := c.types[desc.Type]
	if !ok {
		c.logger.Debug().
			Str("type", desc.Type).
			Str("key", key).
			Msg("unknown component type, dropping node")
		c.metrics.NodeDropped(metrics.ReasonUnknownType)
		return nil
	}

	props := Props{
		Key:   key,
		Attrs: make(map[string]string, len(desc.Attributes)),
	}
	for name, raw := range desc.Attributes {
		at, declared := t.attributes[name]
		if !declared {
			continue
		}
		props.Attrs[name] = at.PropValue(raw)
	}

	for _, slot := range t.slotNames {
		children := desc.Slots[slot]
		if children == nil {
			continue
		}
		nodes := make([]templ.Component, len(children))
		for i, child := range children {
			nodes[i] = c.render(child, slot+strconv.Itoa(i), depth+1)
		}
		if props.Slots == nil {
			props.Slots = make(map[string][]templ.Component, len(t.slotNames))
		}
		props.Slots[slot] = nodes
	}

	c.metrics.NodeRendered()
	return t.primitive.Render(props)
}
