package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// Module mounts one group of routes.
type Module interface{ Mount(gin.IRouter) }

// Modules may implement prioritizer to control mount order (lower first);
// the default is 100.
type prioritizer interface{ Priority() int }

type Registry struct {
	mu   sync.RWMutex
	mods []Module
}

func (r *Registry) Register(mods ...Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range mods {
		if m != nil {
			r.mods = append(r.mods, m)
		}
	}
}

// MountAll mounts every registered module on g in priority order.
func (r *Registry) MountAll(g gin.IRouter) {
	r.mu.RLock()
	mods := append([]Module(nil), r.mods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.Mount(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
