package dbg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDumpIsEmptyWhenDisabled(t *testing.T) {
	SetEnabled(false)
	t.Cleanup(func() { SetEnabled(false) })

	assert.Equal(t, "", Dump(struct{ X int }{X: 1}))
}

func TestDumpRendersWhenEnabled(t *testing.T) {
	SetEnabled(true)
	t.Cleanup(func() { SetEnabled(false) })

	out := Dump(struct{ X int }{X: 1})
	assert.Contains(t, out, "X: (int) 1")
}
