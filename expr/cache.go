package expr

import "sync"

// parseCache memoizes compiled expressions by source text. Nested
// expression values make repeated compiles common: without the cache,
// every Evaluate of an outer expression re-lexes and re-resolves each
// string-valued reference it touches.
type parseCache struct {
	mu sync.Mutex
	m  map[string]*ParsedExpression
}

func (c *parseCache) get(text string) (*ParsedExpression, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.m[text]
	return p, ok
}

func (c *parseCache) put(text string, p *ParsedExpression) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = make(map[string]*ParsedExpression)
	}
	c.m[text] = p
}

func (c *parseCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = nil
}

// compile returns the cached compiled form of text, parsing and caching
// it on first use. Failures are not cached.
func (c *Context) compile(text string) (*ParsedExpression, error) {
	if p, ok := c.parsed.get(text); ok {
		return p, nil
	}
	p, err := ParseAndValidate(text, c)
	if err != nil {
		return nil, err
	}
	c.parsed.put(text, p)
	return p, nil
}

// Invalidate drops the compiled-expression cache. Call it after mutating
// the context's terms or functions.
func (c *Context) Invalidate() {
	c.parsed.clear()
}
