package rows

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/vset/pkg/vset"
)

func TestRead_ValidFile(t *testing.T) {
	content := []byte(`accession,label,value,definition,full_definition
appris.principal1,PRINCIPAL:1,principal1,short,long
appris.principal2,PRINCIPAL:2,principal2,short,long
`)
	f, err := Read("appris.csv", content)
	require.NoError(t, err)

	recs := f.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[0].Line)
	assert.Equal(t, 3, recs[1].Line)
	assert.Equal(t, "appris.principal1", f.Value(recs[0], "accession"))
}

func TestRead_HeaderIsCaseInsensitiveAndTrimmed(t *testing.T) {
	content := []byte("Accession, LABEL ,Value,Definition,Full_Definition\na,b,c,d,e\n")
	f, err := Read("x.csv", content)
	require.NoError(t, err)

	rec := f.Records()[0]
	assert.Equal(t, "b", f.Value(rec, "label"))
	assert.Equal(t, "e", f.Value(rec, "full_definition"))
}

func TestRead_MissingRequiredColumn(t *testing.T) {
	content := []byte("accession,label,definition,full_definition\na,b,c,d\n")
	_, err := Read("x.csv", content)

	var schemaErr *vset.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, 1, schemaErr.Row)
	assert.Equal(t, "value", schemaErr.Column)
	assert.ErrorIs(t, err, vset.ErrSchema)
}

func TestRead_EmptyFile(t *testing.T) {
	_, err := Read("x.csv", nil)

	var schemaErr *vset.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, 1, schemaErr.Row)
}

func TestRead_BlankRowsKeepNumbering(t *testing.T) {
	content := []byte(`accession,label,value,definition,full_definition
a.1,l,v,d,f
,,,,
a.2,l,v,d,f
`)
	f, err := Read("x.csv", content)
	require.NoError(t, err)

	recs := f.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[0].Line)
	assert.Equal(t, 4, recs[1].Line)
}

func TestRead_RaggedRowsTolerated(t *testing.T) {
	// Short rows surface as blank cells, not parse errors. Whether the
	// blank is an error is the validator's call.
	content := []byte(`accession,label,value,definition,full_definition,purl
a.1,l,v,d,f
`)
	f, err := Read("x.csv", content)
	require.NoError(t, err)
	assert.Equal(t, "", f.Value(f.Records()[0], "purl"))
}

func TestRead_InvalidUTF8Sanitized(t *testing.T) {
	content := append([]byte("accession,label,value,definition,full_definition\na.1,caf"), 0xE9)
	content = append(content, []byte(",v,d,f\n")...)

	f, err := Read("x.csv", content)
	require.NoError(t, err)
	assert.Equal(t, "caf�", f.Value(f.Records()[0], "label"))
}

func TestMakeHeaderIndex_FirstOccurrenceWins(t *testing.T) {
	idx := MakeHeaderIndex([]string{"accession", "label", "accession"})
	assert.Equal(t, 0, idx["accession"])
	assert.Equal(t, 1, idx["label"])
}
