package api

import (
	"context"
	"net/http"
	"sync"
)

type hooksKey struct{}

// hookList collects the work a handler wants done once its response is written
type hookList struct {
	mu  sync.Mutex
	fns []func()
}

func (h *hookList) add(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *hookList) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.fns)
}

func (h *hookList) take() []func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	fns := h.fns
	h.fns = nil
	return fns
}

// AfterResponse schedules fn to run after the response for ctx's request has
// been written, whatever its outcome. It reports false when ctx carries no hook list.
func AfterResponse(ctx context.Context, fn func()) bool {
	hooks, ok := ctx.Value(hooksKey{}).(*hookList)
	if !ok {
		return false
	}
	hooks.add(fn)
	return true
}

// withPostResponse runs the scheduled hooks in the background once the handler
// returns, including when it panics.
func (s *Server) withPostResponse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := &hookList{}
		defer s.runHooks(hooks)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), hooksKey{}, hooks)))

		if hooks.len() == 0 {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	})
}

func (s *Server) runHooks(hooks *hookList) {
	fns := hooks.take()
	if len(fns) == 0 {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		for _, fn := range fns {
			fn()
		}
	}()
}

// Wait blocks until every scheduled post-response hook has finished
func (s *Server) Wait() {
	s.pending.Wait()
}
