package runtime

import (
	"chat-relay/errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestCensoredLoader_LoadAll(t *testing.T) {
	req := require.New(t)

	// Given two language files, a duplicate word and files to ignore
	files := fstest.MapFS{
		"words/en.txt":       {Data: []byte("badger\r\nsnake\n\n  mushroom  \n")},
		"words/fr.txt":       {Data: []byte("blaireau\nbadger\n")},
		"words/README.md":    {Data: []byte("not a word list")},
		"words/nested/x.txt": {Data: []byte("ignored")},
	}

	data, err := NewCensoredLoader(files).LoadAll("words")

	req.NoError(err)
	req.ElementsMatch([]string{"badger", "snake", "mushroom", "blaireau"}, data.Words)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
}

func TestCensoredLoader_RootDirectory(t *testing.T) {
	req := require.New(t)
	files := fstest.MapFS{"en.txt": {Data: []byte("badger\n")}}

	data, err := NewCensoredLoader(files).LoadAll(".")

	req.NoError(err)
	req.Equal([]string{"badger"}, data.Words)
}

func TestCensoredLoader_NoWords(t *testing.T) {
	req := require.New(t)
	files := fstest.MapFS{"words/en.txt": {Data: []byte("\n   \n")}}

	_, err := NewCensoredLoader(files).LoadAll("words")

	req.ErrorIs(err, errors.ErrEmptyWords)
}

func TestCensoredLoader_MissingDirectory(t *testing.T) {
	req := require.New(t)

	_, err := NewCensoredLoader(fstest.MapFS{}).LoadAll("words")

	req.Error(err)
}
