package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportProgress(t *testing.T) {
	var out bytes.Buffer
	p := NewImportProgress(&out)

	// Finish before any update is a no-op.
	p.Finish()
	assert.Empty(t, out.String())

	for i := 1; i <= 3; i++ {
		p.Update(i, 3)
	}
	p.Finish()

	assert.Contains(t, out.String(), "Importing invoices")
	assert.Contains(t, out.String(), "3/3")
}
