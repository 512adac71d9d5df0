package readers

import (
	"bytes"
	"io"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoCloser(t *testing.T) {
	assert.Nil(t, NoCloser(nil))

	// bytes.Buffer doesn't implement io.Closer so should be returned as is
	var buf bytes.Buffer
	assert.Equal(t, io.Reader(&buf), NoCloser(&buf))

	// an io.ReadCloser should be wrapped so Close is hidden
	rc := ioutil.NopCloser(strings.NewReader("potato"))
	in := NoCloser(rc)
	_, hasClose := in.(io.Closer)
	assert.False(t, hasClose)

	got, err := ioutil.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, "potato", string(got))
}
