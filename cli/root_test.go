package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandWiring(t *testing.T) {
	cmd := NewRootCommand()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "hunt")
	assert.Contains(t, names, "history")

	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-file"))
}
