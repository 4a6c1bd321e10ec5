package errors_test

import (
	"github.com/myrjola/spotfake/internal/errors"
	"github.com/stretchr/testify/require"
	"log/slog"
	"strings"
	"testing"
)

func TestAnnotatedError(t *testing.T) {
	sentinel := errors.NewSentinel("nothing to export")

	wrapped := errors.Wrap(sentinel, "export library", slog.Int("items", 0))
	require.True(t, errors.Is(wrapped, sentinel), "wrapped error should match sentinel")
	require.Equal(t, "export library: nothing to export", wrapped.Error())

	var annotated errors.AnnotatedError
	require.True(t, errors.As(wrapped, &annotated), "wrapped error should be annotated")

	logValue := annotated.LogValue()
	require.Equal(t, slog.KindGroup, logValue.Kind())

	var foundSource bool
	for _, attr := range logValue.Group() {
		if attr.Key == "source" {
			foundSource = true
			require.True(t, strings.Contains(attr.Value.String(), "annotatederror_test.go"),
				"source should point to the call site, got %s", attr.Value.String())
		}
	}
	require.True(t, foundSource, "log value should include source location")
}

func TestAnnotatedError_New(t *testing.T) {
	err := errors.New("no current round")
	require.Equal(t, "no current round", err.Error())
	require.Nil(t, errors.Unwrap(err))
}
