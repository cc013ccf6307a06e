package keygen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_Generate_Unique(t *testing.T) {
	g := New()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Generate()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "generated id repeated: %s", id)
		seen[id] = true
	}
}
