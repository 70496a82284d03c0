package game

import (
	"math/rand"
	"testing"

	"github.com/wengjjpaul/DKPhonicsCardGame/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanDeal(t *testing.T) {
	tt := []struct {
		name           string
		playerCount    int
		cardsPerPlayer int
		want           bool
	}{
		{"2人x5枚は余裕で配れる", 2, 5, true},
		{"6人x8枚でも場札が残る", 6, 8, true},
		{"6人x9枚はデッキを超える", 6, 9, false},
		{"ちょうど50枚では場札が残らない", 2, 25, false},
		{"49枚なら場札1枚が残る", 7, 7, true},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanDeal(tc.playerCount, tc.cardsPerPlayer))
		})
	}

	// 設定上限は満員でも必ず配り切れる値になっている
	assert.True(t, CanDeal(models.MaxPlayers, MaxCardsPerPlayer))
}

func TestDealCardsRoundRobin(t *testing.T) {
	deck := AllCards() // シャッフルせず順序が分かる状態で配る
	hands, remaining := DealCards(deck, 2, 5)

	require.Len(t, hands, 2)
	require.Len(t, hands[0], 5)
	require.Len(t, hands[1], 5)
	assert.Len(t, remaining, 40)

	// 1枚ずつ交互に配られる
	assert.Equal(t, deck[0].ID, hands[0][0].ID)
	assert.Equal(t, deck[1].ID, hands[1][0].ID)
	assert.Equal(t, deck[2].ID, hands[0][1].ID)
	assert.Equal(t, deck[8].ID, hands[0][4].ID)
	assert.Equal(t, deck[9].ID, hands[1][4].ID)
	assert.Equal(t, deck[10].ID, remaining[0].ID)
}

func TestSelectStarterPhonicsOnTop(t *testing.T) {
	t.Run("先頭がフォニックスならそのまま場札になる", func(t *testing.T) {
		cat, _ := GetCardByID("phonics-1")
		rest := []models.Card{phonicsCard("r1", "e"), phonicsCard("r2", "i")}
		deck := append([]models.Card{cat}, rest...)

		playPile, drawPile, suit := SelectStarter(deck, rand.New(rand.NewSource(1)))
		require.Len(t, playPile, 1)
		assert.Equal(t, cat.ID, playPile[0].ID)
		assert.Equal(t, "a", suit)
		assert.Len(t, drawPile, 2)
	})

	t.Run("先頭がアクションカードなら戻してフォニックスを探す", func(t *testing.T) {
		miss := ActionCardsByType(models.ActionMissATurn)[0]
		deck := []models.Card{
			miss,
			ActionCardsByType(models.ActionChange)[0],
			phonicsCard("r1", "o"),
			phonicsCard("r2", "u"),
		}

		playPile, drawPile, suit := SelectStarter(deck, rand.New(rand.NewSource(5)))
		require.Len(t, playPile, 1)
		assert.True(t, playPile[0].IsPhonics(), "開始時の場札は必ずフォニックスカード")
		assert.Equal(t, playPile[0].Suit, suit)
		// カードは増減しない
		assert.Len(t, drawPile, len(deck)-1)
	})
}

func TestInitializeGame(t *testing.T) {
	players := []models.PlayerJoinInfo{
		{SessionID: "s1", Name: "Mia"},
		{SessionID: "s2", Name: "Leo"},
	}
	settings := models.DefaultGameSettings()

	state := InitializeGame(players, settings, "s1", rand.New(rand.NewSource(99)))

	assert.Equal(t, models.StatusPlaying, state.Status)
	assert.Equal(t, "s1", state.HostSessionID)
	assert.Equal(t, models.DirectionForward, state.Direction)
	require.Len(t, state.Players, 2)
	assert.True(t, state.Players[0].IsHost)
	assert.False(t, state.Players[1].IsHost)
	assert.NotEmpty(t, state.Players[0].ID)
	assert.Len(t, state.Code, 4)

	// 2人 x 5枚 = 10枚配り、場札1枚、山札39枚
	assert.Len(t, state.Players[0].Hand, 5)
	assert.Len(t, state.Players[1].Hand, 5)
	assert.Len(t, state.PlayPile, 1)
	assert.Len(t, state.DrawPile, models.TotalCardCount-11)

	// 開始時の場札はフォニックスカードで、スートが確定している
	assert.True(t, state.PlayPile[0].IsPhonics())
	assert.Equal(t, state.PlayPile[0].Suit, state.CurrentSuit)

	assert.GreaterOrEqual(t, state.CurrentPlayerIndex, 0)
	assert.Less(t, state.CurrentPlayerIndex, 2)
	assert.Equal(t, models.TotalCardCount, totalCards(state))
}

func TestResolveLeave(t *testing.T) {
	cat, _ := GetCardByID("phonics-1")

	t.Run("手番のプレイヤーが離脱したら次の接続中プレイヤーへ", func(t *testing.T) {
		state := buildState(
			[][]models.Card{{cat}, {cat}, {cat}},
			[]models.Card{phonicsCard("top", "a")}, nil, "a")

		res := ResolveLeave(state, "a")
		assert.False(t, res.GameEnded)
		assert.True(t, res.AdvanceTurn)
		assert.Equal(t, 1, res.NextPlayerIndex)
	})

	t.Run("手番でないプレイヤーの離脱は手番を動かさない", func(t *testing.T) {
		state := buildState(
			[][]models.Card{{cat}, {cat}, {cat}},
			[]models.Card{phonicsCard("top", "a")}, nil, "a")

		res := ResolveLeave(state, "c")
		assert.False(t, res.GameEnded)
		assert.False(t, res.AdvanceTurn)
	})

	t.Run("2人対戦で1人離脱したら残った方が勝者", func(t *testing.T) {
		state := buildState(
			[][]models.Card{{cat}, {cat}},
			[]models.Card{phonicsCard("top", "a")}, nil, "a")

		res := ResolveLeave(state, "a")
		assert.True(t, res.GameEnded)
		assert.Equal(t, "b", res.WinnerSessionID)
	})

	t.Run("既に切断者がいて残り1人になる場合も終了", func(t *testing.T) {
		state := buildState(
			[][]models.Card{{cat}, {cat}, {cat}},
			[]models.Card{phonicsCard("top", "a")}, nil, "a")
		state.Players[1].IsConnected = false

		res := ResolveLeave(state, "a")
		assert.True(t, res.GameEnded)
		assert.Equal(t, "c", res.WinnerSessionID)
	})

	t.Run("誰も残らない場合は勝者なしで終了", func(t *testing.T) {
		state := buildState(
			[][]models.Card{{cat}, {cat}},
			[]models.Card{phonicsCard("top", "a")}, nil, "a")
		state.Players[1].IsConnected = false

		res := ResolveLeave(state, "a")
		assert.True(t, res.GameEnded)
		assert.Empty(t, res.WinnerSessionID)
	})
}
