package browser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolscraper/internal/config"
)

func TestIsStale(t *testing.T) {
	require.False(t, IsStale(nil))
	require.False(t, IsStale(errors.New("connection refused")))

	require.True(t, IsStale(ErrStaleNode))
	require.True(t, IsStale(fmt.Errorf("reading node html: %w", ErrStaleNode)))

	// Raw protocol errors surface as plain text.
	require.True(t, IsStale(errors.New("Could not find node with given id (-32000)")))
	require.True(t, IsStale(errors.New("could not find node 42")))
	require.True(t, IsStale(errors.New("node is detached from document")))
}

func TestIsNotClickable(t *testing.T) {
	require.False(t, IsNotClickable(nil))
	require.False(t, IsNotClickable(errors.New("connection refused")))

	require.True(t, IsNotClickable(ErrNotClickable))
	require.True(t, IsNotClickable(fmt.Errorf("clicking button: %w", ErrNotClickable)))

	require.True(t, IsNotClickable(errors.New(`element is not visible`)))
	require.True(t, IsNotClickable(errors.New("could not compute box model")))
	require.True(t, IsNotClickable(errors.New("click intercepted by overlay")))
}

func TestSelectors(t *testing.T) {
	x := ByXPath("//table//tbody/tr")
	require.Equal(t, XPath, x.Mode)
	require.Equal(t, "//table//tbody/tr", x.Query)

	c := ByCSS(".jss16")
	require.Equal(t, CSS, c.Mode)
	require.Equal(t, ".jss16", c.Query)
}

func TestSessionCloseIdempotent(t *testing.T) {
	s := NewSession(&config.Config{}, zap.NewNop())
	s.Close()
	s.Close()
}
