package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelValidator(t *testing.T) {
	t.Run("nil model", func(t *testing.T) {
		_, err := ModelValidator(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgNilModel)
	})

	t.Run("non-struct model", func(t *testing.T) {
		_, err := ModelValidator(42)
		require.Error(t, err)

		_, err = ModelValidator("metric")
		require.Error(t, err)

		_, err = ModelValidator([]string{"a"})
		require.Error(t, err)
	})

	t.Run("struct by value and by pointer", func(t *testing.T) {
		byValue, err := ModelValidator(testMetric{})
		require.NoError(t, err)
		byPointer, err := ModelValidator(&testMetric{})
		require.NoError(t, err)

		payload := []byte(`{"field1":"x","field2":1}`)
		assert.True(t, byValue(payload))
		assert.True(t, byPointer(payload))
	})

	t.Run("conforming payloads", func(t *testing.T) {
		accept, err := ModelValidator(testMetric{})
		require.NoError(t, err)

		assert.True(t, accept([]byte(`{"field1":"Custom log","field2":123}`)))
		// unknown fields are tolerated
		assert.True(t, accept([]byte(`{"field1":"x","field2":1,"extra":true}`)))
	})

	t.Run("non-conforming payloads", func(t *testing.T) {
		accept, err := ModelValidator(testMetric{})
		require.NoError(t, err)

		// not JSON at all
		assert.False(t, accept([]byte("Normal log. Will only appear in console")))
		// JSON scalar, not an object
		assert.False(t, accept([]byte(`123`)))
		// wrong field type
		assert.False(t, accept([]byte(`{"field1":"x","field2":"not an int"}`)))
		// required field missing
		assert.False(t, accept([]byte(`{"field1":"x"}`)))
		// empty payload
		assert.False(t, accept(nil))
	})

	t.Run("nested model with tags", func(t *testing.T) {
		type inner struct {
			Name string `json:"name" validate:"required"`
		}
		type outer struct {
			Inner inner `json:"inner" validate:"required"`
			Count int   `json:"count" validate:"gte=0"`
		}

		accept, err := ModelValidator(outer{})
		require.NoError(t, err)

		assert.True(t, accept([]byte(`{"inner":{"name":"cpu"},"count":3}`)))
		assert.False(t, accept([]byte(`{"inner":{},"count":3}`)))
		assert.False(t, accept([]byte(`{"inner":{"name":"cpu"},"count":-1}`)))
	})
}
