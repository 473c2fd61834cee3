package model

import (
	"github.com/questx-lab/prizechest/internal/prize"
	"github.com/questx-lab/prizechest/pkg/enum"
)

func ConvertOutcome(o prize.Outcome) Outcome {
	return Outcome{
		Label:       o.Label,
		Description: o.Description,
		Type:        o.Type,
		Rarity:      enum.ToString(o.Rarity),
		Kind:        enum.ToString(o.Kind),
		Value:       o.Value,
		IsPrize:     o.IsPrize(),
	}
}

func ConvertWinner(w prize.Winner) Winner {
	return Winner{
		ID:        w.ID,
		Name:      w.ClaimantName,
		Prize:     w.PrizeLabel,
		Timestamp: w.Timestamp,
	}
}

func ConvertWinners(winners []prize.Winner) []Winner {
	result := []Winner{}
	for _, w := range winners {
		result = append(result, ConvertWinner(w))
	}
	return result
}

func ConvertDrawConfig(c prize.Catalog) DrawConfig {
	return DrawConfig{
		PrizePoolText:      c.PoolText(),
		TargetedPrizesText: c.TargetedText(),
		RemoveAfterWin:     c.RemoveAfterWin,
		AvailablePrizes:    c.AvailablePrizes(),
	}
}
