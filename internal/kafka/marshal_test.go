package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapPayload(t *testing.T) {
	type line struct {
		BookID   int64 `json:"book_id"`
		Quantity int   `json:"quantity"`
	}

	got, err := UnwrapPayload[line](json.RawMessage(`{"book_id":7,"quantity":2}`))
	require.NoError(t, err)
	assert.Equal(t, line{BookID: 7, Quantity: 2}, got)

	_, err = UnwrapPayload[line](json.RawMessage(`{"book_id":"x"`))
	assert.ErrorContains(t, err, "decode payload")
}

func TestMustMarshalPanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(make(chan int)) })
	assert.JSONEq(t, `{"a":1}`, string(MustMarshal(map[string]int{"a": 1})))
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "test.topic", 1)
	p.Close()
	p.Close()
	assert.NotPanics(t, func() { p.Publish([]byte("k"), []byte("v")) })
}
