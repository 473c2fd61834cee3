package domain

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/questx-lab/prizechest/internal/model"
	"github.com/questx-lab/prizechest/internal/store"
	"github.com/questx-lab/prizechest/pkg/errorx"
	"github.com/questx-lab/prizechest/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// readUntil reads messages until one of type msgType arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) json.RawMessage {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg.Data
		}
	}
}

func Test_wsDomain_Serve(t *testing.T) {
	ctx := testutil.MockContext()
	s := store.NewMemoryStore(50)
	defer s.Close()

	drawDomain := newTestDrawDomain(t, s)
	saveConfig(t, ctx, drawDomain, "Voucher", "", true)

	wsDomain := NewWsDomain(s, drawDomain)
	defer wsDomain.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wsDomain.Serve(ctx, w, r)
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	var cfg model.DrawConfig
	require.NoError(t, json.Unmarshal(readUntil(t, conn, wsTypeConfig), &cfg))
	require.Equal(t, "Voucher", cfg.PrizePoolText)
	require.Equal(t, 1, cfg.AvailablePrizes)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": wsTypeClaim,
		"data": map[string]any{"name": "alice"},
	}))

	var result model.ClaimPrizeResponse
	require.NoError(t, json.Unmarshal(readUntil(t, conn, wsTypeClaimResult), &result))
	require.Equal(t, "Voucher", result.Outcome.Label)
	require.Equal(t, "alice", result.Winner.Name)

	// The claim is pushed to subscribers as a new winner list.
	for {
		var winners []model.Winner
		require.NoError(t, json.Unmarshal(readUntil(t, conn, wsTypeWinners), &winners))
		if len(winners) == 1 {
			require.Equal(t, result.Winner, winners[0])
			break
		}
	}

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": wsTypeClaim,
		"data": map[string]any{"name": " "},
	}))

	var wsErr model.WsError
	require.NoError(t, json.Unmarshal(readUntil(t, conn, wsTypeError), &wsErr))
	require.Equal(t, int64(errorx.BadRequest), wsErr.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, json.Unmarshal(readUntil(t, conn, wsTypeError), &wsErr))
	require.Equal(t, int64(errorx.BadRequest), wsErr.Code)
}
