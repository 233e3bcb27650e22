package upstream

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestErrorMatching(t *testing.T) {
	cause := errors.New("connection refused")
	transport := fmt.Errorf("list clips: %w", &TransportError{
		Service: "clipstore",
		Op:      "GET /cookclip",
		Err:     cause,
	})
	require.True(t, IsTransport(transport))
	require.False(t, IsLogical(transport))
	require.ErrorIs(t, transport, cause)
	require.Equal(t, "could not reach clipstore, try again later", Message(transport))

	logical := &LogicalError{Service: "foodsafety", Code: "ERROR-300", Message: "필수 값이 누락되어 있습니다."}
	require.True(t, IsLogical(logical))
	require.False(t, IsTransport(logical))
	require.Equal(t, "필수 값이 누락되어 있습니다.", Message(logical))
	require.Contains(t, logical.Error(), "ERROR-300")

	require.Equal(t, "plain", Message(errors.New("plain")))
}

func TestTransportErrorString(t *testing.T) {
	err := &TransportError{Service: "clipstore", Op: "DELETE /cookclip/3", Status: 500}
	require.Equal(t, "clipstore DELETE /cookclip/3: status 500", err.Error())
}

func TestSnippet(t *testing.T) {
	require.Equal(t, "short", Snippet([]byte("short")))

	long := strings.Repeat("x", maxBodySnippet+10)
	require.Len(t, Snippet([]byte(long)), maxBodySnippet+3)

	// 512 is not a multiple of 3, the cut must not split a hangul syllable
	korean := strings.Repeat("가", 200)
	snippet := Snippet([]byte(korean))
	require.True(t, utf8.ValidString(snippet))
	require.Equal(t, strings.Repeat("가", 170)+"...", snippet)
}
