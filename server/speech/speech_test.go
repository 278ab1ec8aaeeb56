package speech

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
)

func TestConsoleRecognizer(t *testing.T) {
	r := NewConsoleRecognizer(strings.NewReader("hello there\n  trimmed  \n"))

	text, err := r.Listen(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)

	text, err = r.Listen(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "trimmed", text)

	_, err = r.Listen(context.Background(), time.Second)
	assert.Equal(t, io.EOF, err)
}

func TestConsoleRecognizer_EmptyLineIsTimeout(t *testing.T) {
	r := NewConsoleRecognizer(strings.NewReader("\n"))

	_, err := r.Listen(context.Background(), time.Second)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.ErrCodeTimeout))
}

func TestConsoleSynthesizer(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSynthesizer(&buf)

	require.NoError(t, s.Speak(context.Background(), "Hello!"))
	assert.Equal(t, "assistant> Hello!\n", buf.String())
}

func TestScriptedRecognizer(t *testing.T) {
	r := NewScriptedRecognizer(Say("first"), Silence(), Say("second"))

	text, err := r.Listen(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	_, err = r.Listen(context.Background(), time.Second)
	assert.True(t, apperr.IsCode(err, apperr.ErrCodeTimeout))

	text, err = r.Listen(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "second", text)

	// Exhausted scripts time out.
	_, err = r.Listen(context.Background(), time.Second)
	assert.True(t, apperr.IsCode(err, apperr.ErrCodeTimeout))
}

func TestRecordingSynthesizer(t *testing.T) {
	s := NewRecordingSynthesizer()
	require.NoError(t, s.Speak(context.Background(), "one"))
	require.NoError(t, s.Speak(context.Background(), "two"))

	assert.Equal(t, []string{"one", "two"}, s.Spoken())
}
