package ssa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ore/internal/parser"
	"github.com/mna/ore/internal/ssa"
)

type fakeLibs map[string]bool

func (f fakeLibs) HasLibrary(name string) bool { return f[name] }

func TestLowerImportUnknownLibraryIsError(t *testing.T) {
	root, err := parser.Parse([]byte(`
import nope;
`), "main")
	require.NoError(t, err)

	_, _, err = ssa.Lower(root, "main", nil, fakeLibs{})
	require.Error(t, err)

	var errs parser.ErrorList
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, parser.NotFoundLibrary, errs[0].Kind)
}

func TestLowerImportKnownLibraryIsAccepted(t *testing.T) {
	root, err := parser.Parse([]byte(`
import helper;
`), "main")
	require.NoError(t, err)

	_, _, err = ssa.Lower(root, "main", nil, fakeLibs{"helper": true})
	assert.NoError(t, err)
}

func TestLowerImportNilLibsSkipsValidation(t *testing.T) {
	root, err := parser.Parse([]byte(`
import nope;
`), "main")
	require.NoError(t, err)

	_, _, err = ssa.Lower(root, "main", nil, nil)
	assert.NoError(t, err)
}
