package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full no", input: "No\n", def: true, want: false},
		{name: "empty takes default yes", input: "\n", def: true, want: true},
		{name: "empty takes default no", input: "\n", want: false},
		{name: "retries on junk", input: "maybe\nyes\n", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Commit statuses?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Commit statuses?")
		})
	}
}

func TestConfirmCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	p := NewPrompter(pr, &bytes.Buffer{})
	_, err := p.Confirm(ctx, "Delete?", false)
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  City Power  \n\n"), &out)

	got, err := p.Ask(context.Background(), "Vendor", "Unknown")
	require.NoError(t, err)
	assert.Equal(t, "City Power", got)

	got, err = p.Ask(context.Background(), "Category", "Services")
	require.NoError(t, err)
	assert.Equal(t, "Services", got)
	assert.Contains(t, out.String(), "(Services)")
}
