package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/questx-lab/prizechest/internal/model"
	"github.com/questx-lab/prizechest/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type envelope[T any] struct {
	Code  int64  `json:"code"`
	Error string `json:"error"`
	Data  T      `json:"data"`
}

func call[T any](t *testing.T, h http.Handler, method, target, body string) envelope[T] {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func Test_srv_loadRouter(t *testing.T) {
	s := &srv{ctx: testutil.MockContext()}
	s.loadRepos()
	require.NoError(t, s.loadStore())
	defer s.close()
	s.loadDomains()

	h := s.loadRouter().Handler()

	saved := call[model.SaveConfigResponse](t, h, http.MethodPost, "/saveConfig",
		`{"prize_pool_text":"Voucher","targeted_prizes_text":"rian:Iphone 15 Pro","remove_after_win":true}`)
	require.Zero(t, saved.Code)
	require.Equal(t, 1, saved.Data.Config.AvailablePrizes)

	claimed := call[model.ClaimPrizeResponse](t, h, http.MethodPost, "/claim", `{"name":"Rian"}`)
	require.Zero(t, claimed.Code)
	require.Equal(t, "Iphone 15 Pro", claimed.Data.Outcome.Label)

	cfg := call[model.GetConfigResponse](t, h, http.MethodGet, "/getConfig", "")
	require.Equal(t, "", cfg.Data.Config.TargetedPrizesText)

	winners := call[model.GetWinnersResponse](t, h, http.MethodGet, "/getWinners?limit=10", "")
	require.Len(t, winners.Data.Winners, 1)
	require.Equal(t, "Rian", winners.Data.Winners[0].Name)

	bad := call[model.ClaimPrizeResponse](t, h, http.MethodPost, "/claim", `{"name":""}`)
	require.NotZero(t, bad.Code)
	require.NotEmpty(t, bad.Error)

	cleared := call[model.ClearWinnersResponse](t, h, http.MethodPost, "/clearWinners", "")
	require.Zero(t, cleared.Code)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), "prize_claims_total")
}
