// Package cache keeps one loaded translation per cache generation for the
// lifetime of the process.
package cache

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Generation identifies one fetch-and-parse cycle. A different generation is a
// different cache key; nothing cached under an older generation is reused.
type Generation struct {
	Grammar  int    `json:"grammar"`  // Parser grammar version
	Dialect  string `json:"dialect"`  // Configured dialect, "auto" included
	Source   string `json:"source"`   // Document URL or path
	Revision int    `json:"revision"` // Bumped on explicit invalidation
}

// Key returns the cache key for the generation
func (g Generation) Key() string {
	sum := blake3.Sum256([]byte(fmt.Sprintf("%d\x00%s\x00%s\x00%d", g.Grammar, g.Dialect, g.Source, g.Revision)))
	return "ssuula:v1:" + hex.EncodeToString(sum[:16])
}

// Next returns the generation that replaces g on invalidation
func (g Generation) Next() Generation {
	g.Revision++
	return g
}

func (g Generation) String() string {
	return fmt.Sprintf("g%d/%s/r%d", g.Grammar, g.Dialect, g.Revision)
}
