package model

type Outcome struct {
	Label       string `json:"label" structs:"label"`
	Description string `json:"description" structs:"description"`
	Type        string `json:"type" structs:"type"`
	Rarity      string `json:"rarity" structs:"rarity"`
	Kind        string `json:"kind" structs:"kind"`
	Value       int    `json:"value" structs:"value"`
	IsPrize     bool   `json:"is_prize" structs:"is_prize"`
}

type Winner struct {
	ID        string `json:"id" structs:"id"`
	Name      string `json:"name" structs:"name"`
	Prize     string `json:"prize" structs:"prize"`
	Timestamp int64  `json:"timestamp" structs:"timestamp"`
}

type DrawConfig struct {
	PrizePoolText      string `json:"prize_pool_text" structs:"prize_pool_text"`
	TargetedPrizesText string `json:"targeted_prizes_text" structs:"targeted_prizes_text"`
	RemoveAfterWin     bool   `json:"remove_after_win" structs:"remove_after_win"`
	AvailablePrizes    int    `json:"available_prizes" structs:"available_prizes"`
}

type ClaimPrizeRequest struct {
	Name string `json:"name" mapstructure:"name"`
}

type ClaimPrizeResponse struct {
	Outcome Outcome `json:"outcome" structs:"outcome"`
	Winner  Winner  `json:"winner" structs:"winner"`
}

type GetConfigRequest struct{}

type GetConfigResponse struct {
	Config DrawConfig `json:"config"`
}

type SaveConfigRequest struct {
	PrizePoolText      string `json:"prize_pool_text"`
	TargetedPrizesText string `json:"targeted_prizes_text"`
	RemoveAfterWin     bool   `json:"remove_after_win"`
}

type SaveConfigResponse struct {
	Config DrawConfig `json:"config"`
}

type GetWinnersRequest struct {
	Limit int `form:"limit" json:"limit"`
}

type GetWinnersResponse struct {
	Winners []Winner `json:"winners"`
}

type ClearWinnersRequest struct{}

type ClearWinnersResponse struct{}

// WsMessage is a message pushed to a live subscriber.
type WsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WsRequest is a command sent by a live subscriber.
type WsRequest struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

type WsError struct {
	Code  int64  `json:"code" structs:"code"`
	Error string `json:"error" structs:"error"`
}
