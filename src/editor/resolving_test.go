package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xmledit/src/editor"
	"xmledit/src/vars"
)

func openResolving(t *testing.T, content string) (*editor.ResolvingEditor, *editor.XMLEditor) {
	t.Helper()
	base := openXML(t, content)
	scope := vars.NewMapScope(nil, map[string]string{"host": "example.org", "port": "8080"})
	return editor.NewResolvingEditor(base, vars.NewInterpolator(), scope), base
}

func TestResolvingEditorExpandsReads(t *testing.T) {
	ed, _ := openResolving(t, "<s><host>${host}</host><url>http://${host}:${port}/</url><e>${port}</e><e>${nope}</e></s>\n")

	value, ok, err := ed.Get("/s/host")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "example.org", value)

	value, _, err = ed.Get("/s/url")
	require.NoError(t, err)
	assert.Equal(t, "http://example.org:8080/", value)

	values, err := ed.GetList("/s/e")
	require.NoError(t, err)
	assert.Equal(t, []string{"8080", "${nope}"}, values)

	children, err := ed.GetChildren("/s")
	require.NoError(t, err)
	require.Len(t, children, 4)
	assert.Equal(t, editor.Child{Name: "host", Value: "example.org"}, children[0])

	_, ok, err = ed.Get("/s/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolvingEditorRejectsUnresolvedTarget(t *testing.T) {
	ed, base := openResolving(t, "<s><a>${nope}</a><b>${host}</b></s>\n")

	_, err := ed.Set("/s/a", "x")
	assert.ErrorIs(t, err, editor.ErrUnsupportedEdit)
	assert.False(t, base.IsDirty())

	changed, err := ed.Set("/s/b", "literal")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "<s><a>${nope}</a><b>literal</b></s>\n", string(base.Lines().Bytes()))
}

func TestResolvingEditorPassesThroughMissingPath(t *testing.T) {
	ed, _ := openResolving(t, "<s><a>1</a></s>\n")
	_, err := ed.Set("/s/b", "x")
	assert.ErrorIs(t, err, editor.ErrPathNotFound)
}
