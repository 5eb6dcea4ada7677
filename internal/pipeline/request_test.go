package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestStringContentWithImagesList(t *testing.T) {
	body := []byte(`{
		"messages": [
			{"role": "user", "content": "hello"},
			{"role": "assistant", "content": "hi"},
			{"role": "user", "content": "  make it fluffy  ", "images": ["AAA=", "BBB="]}
		]
	}`)

	req, err := ParseRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "make it fluffy", req.Instruction)
	assert.Equal(t, []string{"AAA=", "BBB="}, req.Images)
}

func TestParseRequestContentParts(t *testing.T) {
	body := []byte(`{
		"messages": [
			{"role": "user", "content": [
				{"type": "text", "text": "blend "},
				{"type": "image_url", "image_url": {"url": "data:image/png;base64,AAA="}},
				{"type": "text", "text": "these"},
				{"type": "image_url", "image_url": {"url": "data:image/png;base64,BBB="}}
			]}
		]
	}`)

	req, err := ParseRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "blend these", req.Instruction)
	assert.Equal(t, []string{"data:image/png;base64,AAA=", "data:image/png;base64,BBB="}, req.Images)
}

func TestParseRequestExplicitImagesListWinsOverParts(t *testing.T) {
	// An images key on the turn takes precedence, even when empty.
	body := []byte(`{
		"messages": [
			{"role": "user", "images": [], "content": [
				{"type": "image_url", "image_url": {"url": "data:image/png;base64,AAA="}}
			]}
		]
	}`)

	req, err := ParseRequest(body)
	require.NoError(t, err)
	assert.Empty(t, req.Images)
}

func TestParseRequestNoMessages(t *testing.T) {
	req, err := ParseRequest([]byte(`{"messages": []}`))
	require.NoError(t, err)
	assert.Empty(t, req.Instruction)
	assert.Empty(t, req.Images)
}

func TestParseRequestInvalidBody(t *testing.T) {
	_, err := ParseRequest([]byte(`{not json`))
	require.Error(t, err)
}

func TestImagePayload(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"data url", "data:image/png;base64,iVBORw0KGgo=", "iVBORw0KGgo="},
		{"data url jpeg", "data:image/jpeg;base64,/9j/4AAQ", "/9j/4AAQ"},
		{"bare base64 passes through", "iVBORw0KGgo=", "iVBORw0KGgo="},
		{"comma without base64 prefix passes through", "a,b", "a,b"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ImagePayload(tc.in))
		})
	}
}
