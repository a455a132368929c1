package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	old := buildVersion
	buildVersion = "v9.9.9"
	t.Cleanup(func() { buildVersion = old })

	var buf bytes.Buffer
	PrintBuildData(&buf)

	assert.Equal(t, "Build version: v9.9.9\nBuild date: N/A\nBuild commit: N/A\n", buf.String())
	assert.Equal(t, "v9.9.9", Version())
}
