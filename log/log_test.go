package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(InfoLevel)
	t.Cleanup(func() {
		SetLevel(InfoLevel)
		SetOutput(os.Stderr)
	})

	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())
	assert.False(t, IsLevelEnabled(DebugLevel))

	SetLevel(DebugLevel)
	Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	With(Fields{"task": "notify.admin"}).Warn("failed")

	assert.Contains(t, buf.String(), "task=notify.admin")
	assert.Contains(t, buf.String(), "failed")
}
