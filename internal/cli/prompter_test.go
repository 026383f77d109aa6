package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  lunch  \n"), &out)

	answer, err := p.Ask(context.Background(), "Title")
	require.NoError(t, err)
	assert.Equal(t, "lunch", answer, "answers are trimmed")
	assert.Contains(t, out.String(), "Title")
}

func TestAskDefault(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty answer falls back", input: "\n", want: "Outros"},
		{name: "explicit answer wins", input: "Lazer\n", want: "Lazer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrompter(strings.NewReader(tt.input), &bytes.Buffer{})

			answer, err := p.AskDefault(context.Background(), "Category", "Outros")
			require.NoError(t, err)
			assert.Equal(t, tt.want, answer)
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "whatever\n", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p := NewPrompter(strings.NewReader(tt.input), &bytes.Buffer{})

			ok, err := p.Confirm(context.Background(), "Delete it?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestAskCancelled(t *testing.T) {
	// A reader that never delivers a line.
	blocked, w := make(chan struct{}), &bytes.Buffer{}
	p := NewPrompter(blockingReader{wait: blocked}, w)
	t.Cleanup(func() { close(blocked) })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Ask(ctx, "Title")
	assert.ErrorIs(t, err, ErrInputCancelled)
}

type blockingReader struct {
	wait chan struct{}
}

func (r blockingReader) Read([]byte) (int, error) {
	<-r.wait
	return 0, nil
}
