package prize

import "github.com/questx-lab/prizechest/pkg/enum"

// UnluckyLabel is shown for every non-prize outcome.
const UnluckyLabel = "Anda Kurang Beruntung"

const zonkToken = "ZONK"

type Rarity string

var (
	Common    = enum.New(Rarity("common"), "Common")
	Uncommon  = enum.New(Rarity("uncommon"), "Uncommon")
	Rare      = enum.New(Rarity("rare"), "Rare")
	Epic      = enum.New(Rarity("epic"), "Epic")
	Legendary = enum.New(Rarity("legendary"), "Legendary")
	Cursed    = enum.New(Rarity("cursed"), "Cursed")
)

type Kind string

var (
	TargetedReward = enum.New(Kind("targeted_reward"), "TargetedReward")
	PoolReward     = enum.New(Kind("pool_reward"), "PoolReward")
	Zonk           = enum.New(Kind("zonk"), "Zonk")
	EmptyPool      = enum.New(Kind("empty_pool"), "EmptyPool")
)

const (
	targetedValue = 9999
	poolValue     = 100
)

// Outcome is the result of one resolved claim.
type Outcome struct {
	Label       string
	Description string
	Type        string
	Rarity      Rarity
	Kind        Kind
	Value       int
}

// IsPrize reports whether the outcome awards something.
func (o Outcome) IsPrize() bool {
	return o.Kind == TargetedReward || o.Kind == PoolReward
}

func targetedOutcome(label string) Outcome {
	return Outcome{
		Label:       label,
		Description: "Hadiah ini khusus dipilihkan semesta untukmu!",
		Type:        "Special Reward",
		Rarity:      Legendary,
		Kind:        TargetedReward,
		Value:       targetedValue,
	}
}

func targetedZonkOutcome() Outcome {
	return Outcome{
		Label:       UnluckyLabel,
		Description: "Mohon maaf, tetap semangat!",
		Type:        zonkToken,
		Rarity:      Cursed,
		Kind:        Zonk,
	}
}

func poolOutcome(label string) Outcome {
	return Outcome{
		Label:       label,
		Description: "Selamat! Anda mendapatkan hadiah spesial.",
		Type:        "Reward",
		Rarity:      Epic,
		Kind:        PoolReward,
		Value:       poolValue,
	}
}

func poolZonkOutcome() Outcome {
	return Outcome{
		Label:       UnluckyLabel,
		Description: "Mohon maaf, hadiah utama telah habis. Tetap semangat!",
		Type:        zonkToken,
		Rarity:      Cursed,
		Kind:        Zonk,
	}
}

func emptyPoolOutcome() Outcome {
	return Outcome{
		Label:       UnluckyLabel,
		Description: "Stok hadiah telah habis. (Hubungi Admin)",
		Type:        zonkToken,
		Rarity:      Cursed,
		Kind:        EmptyPool,
	}
}
