// Package pagecache keeps rendered HTML pages in memory so anonymous visitors
// are served without touching the store, and drops them when a mutation
// changes what they show.
//
// Only anonymous GET requests that rendered with 200 are stored. A request
// carrying a session cookie always reaches the handler, because the header
// shows the signed-in user.
package pagecache

import (
	"bytes"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
)

// SessionCookie is the cookie whose presence marks a request as signed in.
const SessionCookie = "token"

// Page is a stored response body.
type Page struct {
	Body        []byte
	ContentType string
}

// Cache maps request paths to rendered pages.
type Cache struct {
	pages  *ristretto.Cache[string, Page]
	logger *slog.Logger

	// generation is bumped by every Invalidate. A render that started
	// before an invalidation is not stored.
	generation atomic.Uint64
}

// New creates a cache holding at most maxCost bytes of page bodies.
func New(maxCost int64, logger *slog.Logger) (*Cache, error) {
	pages, err := ristretto.NewCache(&ristretto.Config[string, Page]{
		NumCounters: 10_000,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{pages: pages, logger: logger}, nil
}

func (c *Cache) Get(path string) (Page, bool) {
	return c.pages.Get(path)
}

// Set stores a page and waits until it is visible to Get.
func (c *Cache) Set(path string, page Page) {
	if c.pages.Set(path, page, int64(len(page.Body))) {
		c.pages.Wait()
	}
}

// Invalidate drops the given paths.
func (c *Cache) Invalidate(paths ...string) {
	c.generation.Add(1)
	for _, p := range paths {
		c.pages.Del(p)
	}
	c.logger.Debug("pages invalidated", slog.Any("paths", paths))
}

// InvalidateAll drops every stored page.
func (c *Cache) InvalidateAll() {
	c.generation.Add(1)
	c.pages.Clear()
	c.logger.Debug("all pages invalidated")
}

func (c *Cache) Close() {
	c.pages.Close()
}

// Middleware serves cached pages and stores fresh ones.
func (c *Cache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cacheable(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.Path
		if page, ok := c.Get(key); ok {
			w.Header().Set("Content-Type", page.ContentType)
			w.Header().Set("X-Cache", "HIT")
			w.Write(page.Body)
			return
		}

		gen := c.generation.Load()
		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusOK || c.generation.Load() != gen {
			return
		}
		c.Set(key, Page{
			Body:        bytes.Clone(rec.body.Bytes()),
			ContentType: w.Header().Get("Content-Type"),
		})
	})
}

func cacheable(r *http.Request) bool {
	if r.Method != http.MethodGet || r.URL.RawQuery != "" {
		return false
	}
	if _, err := r.Cookie(SessionCookie); err == nil {
		return false
	}
	return true
}

// recorder tees the body into a buffer while writing it through.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
