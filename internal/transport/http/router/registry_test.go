package router

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type recMod struct {
	name string
	prio int
	log  *[]string
}

func (m recMod) Mount(gin.IRouter) { *m.log = append(*m.log, m.name) }
func (m recMod) Priority() int     { return m.prio }

type plainMod struct{ log *[]string }

func (m plainMod) Mount(gin.IRouter) { *m.log = append(*m.log, "plain") }

func TestRegistry_MountOrder(t *testing.T) {
	var got []string
	var r Registry
	r.Register(
		plainMod{&got},
		recMod{"users", 20, &got},
		nil,
		recMod{"home", 0, &got},
		recMod{"sessions", 20, &got},
	)
	r.MountAll(gin.New())
	assert.Equal(t, []string{"home", "users", "sessions", "plain"}, got)
}
