package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, o *Object) string {
	t.Helper()
	defer o.Body.Close()

	b, err := io.ReadAll(o.Body)
	require.NoError(t, err)

	return string(b)
}

func TestLocal_PutGet(t *testing.T) {
	ctx := context.Background()
	l := NewLocalFs(afero.NewMemMapFs())

	require.NoError(t, l.Put(ctx, "report.xlsx", strings.NewReader("hello"), 5, ""))

	o, err := l.Get(ctx, "report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, int64(5), o.Size)
	assert.Equal(t, "hello", readAll(t, o))
}

func TestLocal_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	l := NewLocalFs(afero.NewMemMapFs())

	require.NoError(t, l.Put(ctx, "deck.pptx", strings.NewReader("first version"), 13, ""))
	require.NoError(t, l.Put(ctx, "deck.pptx", strings.NewReader("v2"), 2, ""))

	o, err := l.Get(ctx, "deck.pptx")
	require.NoError(t, err)
	assert.Equal(t, "v2", readAll(t, o))
}

func TestLocal_GetMissing(t *testing.T) {
	l := NewLocalFs(afero.NewMemMapFs())

	_, err := l.Get(context.Background(), "nope.docx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewLocal_ConfinesToRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	l, err := NewLocal(root)
	require.NoError(t, err)

	require.NoError(t, l.Put(ctx, "notes.docx", strings.NewReader("abc"), 3, ""))

	exists, err := afero.Exists(afero.NewOsFs(), root+"/notes.docx")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = l.Get(ctx, "../outside.docx")
	assert.Error(t, err)
}
