package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDenylistMatch(t *testing.T) {
	deny := NewDenylist(DefaultDenylist)

	t.Run("plain select passes", func(t *testing.T) {
		_, blocked := deny.Match("SELECT id, name FROM users WHERE id = 1")
		assert.False(t, blocked)
	})

	t.Run("blocks every default keyword", func(t *testing.T) {
		for _, kw := range DefaultDenylist {
			_, blocked := deny.Match("some " + kw + " statement")
			assert.True(t, blocked, "keyword %q should be blocked", kw)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		kw, blocked := deny.Match("DrOp TABLE users")
		assert.True(t, blocked)
		assert.Equal(t, "drop", kw)
	})

	t.Run("substring containment, not tokens", func(t *testing.T) {
		kw, blocked := deny.Match("SELECT * FROM t; DROP TABLE t")
		assert.True(t, blocked)
		assert.Equal(t, "drop", kw)

		// over-blocking is accepted behavior
		_, blocked = deny.Match("SELECT * FROM updates")
		assert.True(t, blocked)
	})
}
