package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMissingFile(t *testing.T) {
	restore := os.Args
	defer func() { os.Args = restore }()

	// must report the error and return, not hang on the error channel
	os.Args = []string{"xmldoc-lint", filepath.Join(t.TempDir(), "no-such-file.xml")}
	require.Equal(t, 1, _main())
}

func TestLintFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "in.xml")
	require.NoError(t, os.WriteFile(f, []byte(`<root><child a="1"/></root>`), 0o644))

	restore := os.Args
	defer func() { os.Args = restore }()
	os.Args = []string{"xmldoc-lint", f}
	require.Equal(t, 0, _main())
}
