package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Phrasing/kindle"
)

var testBooks = []kindle.BookData{
	{ASIN: "B01", Title: "Dune", Authors: []string{"Herbert, Frank:"}, PercentageRead: 42},
	{ASIN: "B02", Title: "Emma", Authors: []string{"Austen, Jane:"}},
}

func TestWriteBooksTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBooks(&buf, formatTable, testBooks))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ASIN"))
	assert.Contains(t, lines[1], "Dune")
	assert.Contains(t, lines[1], "42%")
}

func TestWriteBooksJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBooks(&buf, formatJSON, testBooks))
	assert.Contains(t, buf.String(), `"asin": "B01"`)
	assert.Contains(t, buf.String(), `"webReaderUrl": ""`)
}

func TestWriteValueYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeValue(&buf, formatYAML, kindle.BookDetails{
		BookLightDetails: kindle.BookLightDetails{ASIN: "B01", Title: "Dune"},
		Publisher:        "Ace",
	}))

	out := buf.String()
	assert.Contains(t, out, "asin: B01\n")
	assert.Contains(t, out, "publisher: Ace\n")
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{formatTable, formatJSON, formatYAML} {
		assert.NoError(t, validateFormat(f))
	}
	assert.Error(t, validateFormat("xml"))
	assert.Error(t, writeValue(&bytes.Buffer{}, formatTable, testBooks))
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, kindle.NopLogger{}, newLogger(false, &bytes.Buffer{}))

	var buf bytes.Buffer
	newLogger(true, &buf).Log("fetched %d books", 3)
	assert.Contains(t, buf.String(), "fetched 3 books")
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"books", "details", "device"}, names)
}
