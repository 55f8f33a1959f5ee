package maincmd_test

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ore/internal/filetest"
	"github.com/mna/ore/internal/maincmd"
)

var testUpdateMaincmdTests = flag.Bool("test.update-maincmd-tests", false, "If set, replace expected maincmd test results with actual results.")

func TestRunFiles(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".ore") {
		t.Run(fi.Name(), func(t *testing.T) {
			var ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &bytes.Buffer{}, Stderr: &ebuf}

			// error is ignored, we just want it (if any) printed to ebuf
			_ = maincmd.RunFiles(ctx, stdio, filepath.Join(srcDir, fi.Name()))
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateMaincmdTests)
		})
	}
}

func TestRunFilesMissingPathReportsError(t *testing.T) {
	var ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &bytes.Buffer{}, Stderr: &ebuf}

	err := maincmd.RunFiles(context.Background(), stdio, filepath.Join("testdata", "in", "does-not-exist.ore"))
	assert.Error(t, err)
	assert.NotEmpty(t, ebuf.String())
}

func TestRunFilesParseErrorReportsError(t *testing.T) {
	var ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &bytes.Buffer{}, Stderr: &ebuf}

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.ore")
	require.NoError(t, os.WriteFile(bad, []byte("function ( { "), 0o600))

	err := maincmd.RunFiles(context.Background(), stdio, bad)
	assert.Error(t, err)
	assert.NotEmpty(t, ebuf.String())
}

func TestRunFilesWithLibPathResolvesImport(t *testing.T) {
	libDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "helper.ore"), []byte(`function noop() {}`), 0o600))

	srcDir := t.TempDir()
	main := filepath.Join(srcDir, "main.ore")
	require.NoError(t, os.WriteFile(main, []byte(`import helper;`), 0o600))

	var ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &bytes.Buffer{}, Stderr: &ebuf}

	err := maincmd.RunFilesWithLibPath(context.Background(), stdio, libDir, main)
	assert.NoError(t, err)
	assert.Empty(t, ebuf.String())
}

func TestRunFilesUnknownImportReportsError(t *testing.T) {
	srcDir := t.TempDir()
	main := filepath.Join(srcDir, "main.ore")
	require.NoError(t, os.WriteFile(main, []byte(`import nosuchlib;`), 0o600))

	var ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &bytes.Buffer{}, Stderr: &ebuf}

	err := maincmd.RunFiles(context.Background(), stdio, main)
	assert.Error(t, err)
	assert.NotEmpty(t, ebuf.String())
}

func TestRunConsoleLine(t *testing.T) {
	var ebuf bytes.Buffer
	stdio := mainer.Stdio{
		Stdin:  strings.NewReader("var x = 1 + 2;\n"),
		Stdout: &bytes.Buffer{},
		Stderr: &ebuf,
	}

	err := maincmd.RunConsoleLine(context.Background(), stdio)
	assert.NoError(t, err)
	assert.Empty(t, ebuf.String())
}

func TestRunConsoleLineParseErrorReportsError(t *testing.T) {
	var ebuf bytes.Buffer
	stdio := mainer.Stdio{
		Stdin:  strings.NewReader("function ( { \n"),
		Stdout: &bytes.Buffer{},
		Stderr: &ebuf,
	}

	err := maincmd.RunConsoleLine(context.Background(), stdio)
	assert.Error(t, err)
	assert.NotEmpty(t, ebuf.String())
}
