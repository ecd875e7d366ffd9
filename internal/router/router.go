// Package router is a thin layer over http.ServeMux that adds route groups
// with their own middleware.
package router

import (
	"io/fs"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
)

type Middleware func(http.Handler) http.Handler

// Router registers method-qualified patterns on a shared ServeMux. Groups
// created from it share the mux and the outer chain.
type Router struct {
	*root
	chain []Middleware
}

type root struct {
	mux     *http.ServeMux
	outer   []Middleware
	once    sync.Once
	handler http.Handler
}

// New returns a router whose routes all run behind chain.
func New(chain ...Middleware) *Router {
	return &Router{root: &root{mux: http.NewServeMux()}, chain: chain}
}

// Use adds middleware around the whole mux, so it also sees 404 and 405
// responses. It must be called before the first request.
func (r *Router) Use(mw ...Middleware) {
	r.outer = append(r.outer, mw...)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.once.Do(func() { r.handler = chain(r.mux, r.outer) })
	r.handler.ServeHTTP(w, req)
}

// Group returns a router that adds mw to every route registered through it.
func (r *Router) Group(mw ...Middleware) *Router {
	return &Router{root: r.root, chain: append(slices.Clone(r.chain), mw...)}
}

func (r *Router) Get(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodGet, pattern, h, mw...)
}

func (r *Router) Post(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPost, pattern, h, mw...)
}

func (r *Router) Put(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodPut, pattern, h, mw...)
}

func (r *Router) Delete(pattern string, h http.HandlerFunc, mw ...Middleware) {
	r.Handle(http.MethodDelete, pattern, h, mw...)
}

// Handle registers h for method and pattern behind the group chain and mw.
func (r *Router) Handle(method, pattern string, h http.Handler, mw ...Middleware) {
	r.mux.Handle(method+" "+pattern, chain(h, append(slices.Clone(r.chain), mw...)))
}

// Static serves regular files from dir under prefix. Directories 404.
func (r *Router) Static(prefix, dir string) {
	prefix = strings.TrimSuffix(prefix, "/")
	files := http.FileServer(http.FS(filesOnly{fs: os.DirFS(dir)}))
	r.Handle(http.MethodGet, prefix+"/{file...}", http.StripPrefix(prefix, files))
}

// chain wraps h so mw[0] runs first.
func chain(h http.Handler, mw []Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

type filesOnly struct{ fs fs.FS }

func (f filesOnly) Open(name string) (fs.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err == nil && info.IsDir() {
		err = fs.ErrNotExist
	}
	if err != nil {
		file.Close()
		return nil, err
	}
	return file, nil
}
