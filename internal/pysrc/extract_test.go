package pysrc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkr-io/walkr/internal/report"
)

func extract(t *testing.T, module, src string) *report.ModuleNode {
	t.Helper()
	rec, err := Extract(context.Background(), module+".py", module, []byte(src))
	require.NoError(t, err)
	require.Nil(t, rec.Failure, "unexpected parse failure")
	require.NotNil(t, rec.Module)
	return rec.Module
}

func TestExtractModuleBasics(t *testing.T) {
	t.Parallel()
	src := `"""App entry point."""
import os


def main():
    pass
`
	mod := extract(t, "app.main", src)
	assert.Equal(t, "app.main", mod.Name)
	assert.True(t, mod.HasDocstring)
	assert.Equal(t, 7, mod.TotalLines)
}

func TestExtractImports(t *testing.T) {
	t.Parallel()
	src := `import os
import os.path
import numpy as np
from collections import OrderedDict
from app.db import Session
from os import *
`
	mod := extract(t, "app.main", src)
	targets := make(map[string]report.Import)
	for _, imp := range mod.Imports {
		targets[imp.Target] = imp
	}
	assert.Contains(t, targets, "os")
	assert.Contains(t, targets, "os.path")
	assert.Contains(t, targets, "numpy")
	assert.Contains(t, targets, "collections")
	assert.Contains(t, targets, "app.db")

	// Wildcard and plain imports of the same target are distinct entries.
	var sawWildcardOS bool
	for _, imp := range mod.Imports {
		if imp.Target == "os" && imp.Wildcard {
			sawWildcardOS = true
		}
	}
	assert.True(t, sawWildcardOS)
}

func TestExtractRelativeImports(t *testing.T) {
	t.Parallel()
	src := `from .models import User
from ..shared import util
from . import db
`
	mod := extract(t, "app.web.views", src)
	require.Len(t, mod.Imports, 3)

	byTarget := make(map[string]report.Import)
	for _, imp := range mod.Imports {
		byTarget[imp.Target] = imp
	}
	require.Contains(t, byTarget, "app.web.models")
	require.Contains(t, byTarget, "app.shared")
	require.Contains(t, byTarget, "app.web")
	assert.True(t, byTarget["app.web.models"].Relative)
}

func TestExtractRelativeImportPastRoot(t *testing.T) {
	t.Parallel()
	// More dots than the module has packages: the bare name is kept and
	// downstream resolution will tag it external.
	mod := extract(t, "main", "from ...lib import x\n")
	require.Len(t, mod.Imports, 1)
	assert.Equal(t, "lib", mod.Imports[0].Target)
}

func TestExtractDuplicateImportsKeepFirst(t *testing.T) {
	t.Parallel()
	src := `import os
import os
from os import path
`
	mod := extract(t, "m", src)
	require.Len(t, mod.Imports, 1)
	assert.Equal(t, 1, mod.Imports[0].Line)
}

func TestExtractQualifiedNames(t *testing.T) {
	t.Parallel()
	src := `class Repo:
    """Storage access."""

    def save(self, item):
        def retry():
            pass
        retry()


def top():
    pass
`
	mod := extract(t, "app.repo", src)

	require.Len(t, mod.Classes, 1)
	assert.Equal(t, "app.repo.Repo", mod.Classes[0].Name)
	assert.True(t, mod.Classes[0].HasDocstring)

	names := make([]string, 0, len(mod.Functions))
	for _, fn := range mod.Functions {
		names = append(names, fn.Name)
	}
	assert.ElementsMatch(t, []string{
		"app.repo.Repo.save",
		"app.repo.Repo.save.retry",
		"app.repo.top",
	}, names)
}

func TestExtractParams(t *testing.T) {
	t.Parallel()
	src := `def f(a, b: int, c=1, d: str = "x", *args, **kwargs):
    pass
`
	mod := extract(t, "m", src)
	require.Len(t, mod.Functions, 1)
	assert.Equal(t, []string{"a", "b", "c", "d", "*args", "**kwargs"}, mod.Functions[0].Params)
}

func TestExtractBranches(t *testing.T) {
	t.Parallel()
	src := `def f(x):
    if x and x > 1:
        return 1
    elif x:
        return 2
    for i in range(3):
        while i:
            i -= 1
    try:
        pass
    except ValueError:
        pass
    return 0 if x else 1
`
	mod := extract(t, "m", src)
	require.Len(t, mod.Functions, 1)
	// if + boolean_operator + elif + for + while + except + conditional = 7
	assert.Equal(t, 7, mod.Functions[0].Branches)
}

func TestExtractBranchesOutsideFunctionsIgnored(t *testing.T) {
	t.Parallel()
	src := `if True:
    x = 1


def f():
    pass
`
	mod := extract(t, "m", src)
	require.Len(t, mod.Functions, 1)
	assert.Equal(t, 0, mod.Functions[0].Branches)
}

func TestExtractCalls(t *testing.T) {
	t.Parallel()
	src := `import logging

logging.basicConfig()


def handler(self):
    self.db.cursor.execute("SELECT 1")
    helper()
`
	mod := extract(t, "m", src)

	var all []string
	for _, c := range mod.Calls {
		all = append(all, c.Callee)
	}
	assert.ElementsMatch(t, []string{"logging.basicConfig", "self.db.cursor.execute", "helper"}, all)

	require.Len(t, mod.Functions, 1)
	var fnCalls []string
	for _, c := range mod.Functions[0].Calls {
		fnCalls = append(fnCalls, c.Callee)
	}
	assert.ElementsMatch(t, []string{"self.db.cursor.execute", "helper"}, fnCalls)
}

func TestExtractDocstrings(t *testing.T) {
	t.Parallel()
	src := `# a comment, not a docstring


def documented():
    """Does things."""
    return 1


def bare():
    return 2
`
	mod := extract(t, "m", src)
	assert.False(t, mod.HasDocstring)

	byName := make(map[string]bool)
	for _, fn := range mod.Functions {
		byName[fn.Name] = fn.HasDocstring
	}
	assert.True(t, byName["m.documented"])
	assert.False(t, byName["m.bare"])
}

func TestExtractRedefinitionKeepsLast(t *testing.T) {
	t.Parallel()
	src := `def f():
    pass


def f(a, b):
    return a + b
`
	mod := extract(t, "m", src)
	require.Len(t, mod.Functions, 1)
	assert.Equal(t, []string{"a", "b"}, mod.Functions[0].Params)
	assert.Equal(t, 5, mod.Functions[0].StartLine)
}

func TestExtractDecoratedDefinition(t *testing.T) {
	t.Parallel()
	src := `@app.route("/")
def index():
    """Home."""
    return render()
`
	mod := extract(t, "m", src)
	require.Len(t, mod.Functions, 1)
	assert.Equal(t, "m.index", mod.Functions[0].Name)
	assert.True(t, mod.Functions[0].HasDocstring)
}

func TestExtractSyntaxError(t *testing.T) {
	t.Parallel()
	rec, err := Extract(context.Background(), "bad.py", "bad", []byte("def broken(:\n"))
	require.NoError(t, err)
	require.NotNil(t, rec.Failure)
	assert.Nil(t, rec.Module)
	assert.Equal(t, "bad", rec.Failure.Module)
	assert.GreaterOrEqual(t, rec.Failure.Line, 1)
}

func TestExtractLineSpans(t *testing.T) {
	t.Parallel()
	src := `def f():
    a = 1
    b = 2
    return a + b
`
	mod := extract(t, "m", src)
	require.Len(t, mod.Functions, 1)
	assert.Equal(t, 1, mod.Functions[0].StartLine)
	assert.Equal(t, 4, mod.Functions[0].EndLine)
}
