package api

import (
	"fmt"

	"golang.org/x/sync/singleflight"
)

// submitGuard is the double-submit guard: while a mutation for a given
// key is in flight, an identical concurrent submission joins it instead
// of running a second one.
type submitGuard struct {
	group singleflight.Group
}

func newSubmitGuard() *submitGuard {
	return &submitGuard{}
}

func (g *submitGuard) do(fn func() (interface{}, error), keyParts ...interface{}) (interface{}, error) {
	key := fmt.Sprintln(keyParts...)
	v, err, _ := g.group.Do(key, fn)
	return v, err
}
