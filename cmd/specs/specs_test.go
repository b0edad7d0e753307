package specs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fjacquet/funds-xlsx/cmd/specs"
)

func TestSpecsCommand_Metadata(t *testing.T) {
	assert.Equal(t, "specs", specs.Cmd.Use)
	assert.Contains(t, specs.Cmd.Short, "table specifications")
	assert.Contains(t, specs.Cmd.Long, "number and content")
	assert.NotNil(t, specs.Cmd.Run)
}
