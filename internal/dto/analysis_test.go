package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopLossJSON(t *testing.T) {
	t.Run("price marshals as a number", func(t *testing.T) {
		data, err := json.Marshal(Strategy{Entry: 100, StopLoss: StopLossPrice(93), TakeProfit: 115})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"stop_loss":93`)
	})

	t.Run("label marshals as a string", func(t *testing.T) {
		data, err := json.Marshal(Strategy{Entry: 100, StopLoss: StopLossLabel("長期持有")})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"stop_loss":"長期持有"`)
	})

	t.Run("round trip", func(t *testing.T) {
		var price, label StopLoss
		require.NoError(t, json.Unmarshal([]byte(`93.5`), &price))
		require.NoError(t, json.Unmarshal([]byte(`"長期持有"`), &label))
		assert.Equal(t, StopLossPrice(93.5), price)
		assert.Equal(t, StopLossLabel("長期持有"), label)
	})
}
