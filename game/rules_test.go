package game

import (
	"math/rand"
	"testing"

	"github.com/wengjjpaul/DKPhonicsCardGame/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phonicsCard(id, suit string) models.Card {
	return models.Card{ID: id, Type: models.CardTypePhonics, Word: suit + "xx", Suit: suit}
}

func actionCard(id string, action models.ActionType) models.Card {
	return models.Card{ID: id, Type: models.CardTypeAction, Action: action}
}

func TestCanPlayCard(t *testing.T) {
	tt := []struct {
		name        string
		card        models.Card
		currentSuit string
		want        bool
	}{
		{"同じスートのフォニックスカードは出せる", phonicsCard("p1", "a"), "a", true},
		{"違うスートのフォニックスカードは出せない", phonicsCard("p1", "e"), "a", false},
		{"アクションカードは常に出せる", actionCard("m1", models.ActionMissATurn), "a", true},
		{"スート制約なしならどのカードでも出せる", phonicsCard("p1", "u"), "", true},
		{"スート制約なしならアクションカードも出せる", actionCard("c1", models.ActionChange), "", true},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanPlayCard(tc.card, tc.currentSuit, nil))
		})
	}
}

func TestPlayableCardsAndMustDraw(t *testing.T) {
	hand := []models.Card{
		phonicsCard("p1", "a"),
		phonicsCard("p2", "e"),
		actionCard("r1", models.ActionReverse),
	}

	playable := PlayableCards(hand, "a", nil)
	require.Len(t, playable, 2)
	assert.Equal(t, "p1", playable[0].ID)
	assert.Equal(t, "r1", playable[1].ID)
	assert.False(t, MustDraw(hand, "a", nil))

	blocked := []models.Card{phonicsCard("p2", "e"), phonicsCard("p3", "i")}
	assert.Empty(t, PlayableCards(blocked, "a", nil))
	assert.True(t, MustDraw(blocked, "a", nil))
}

func TestNextPlayerIndex(t *testing.T) {
	// 前進方向: 0→1→2→3→0
	idx := 0
	var forward []int
	for i := 0; i < 4; i++ {
		idx = NextPlayerIndex(idx, 4, models.DirectionForward, 0)
		forward = append(forward, idx)
	}
	assert.Equal(t, []int{1, 2, 3, 0}, forward)

	// 後退方向: 0→3→2→1→0
	idx = 0
	var backward []int
	for i := 0; i < 4; i++ {
		idx = NextPlayerIndex(idx, 4, models.DirectionBackward, 0)
		backward = append(backward, idx)
	}
	assert.Equal(t, []int{3, 2, 1, 0}, backward)

	// 一回休み(skip=1)は1人飛ばす
	assert.Equal(t, 2, NextPlayerIndex(0, 4, models.DirectionForward, 1))
	assert.Equal(t, 0, NextPlayerIndex(3, 4, models.DirectionForward, 1))
	assert.Equal(t, 3, NextPlayerIndex(1, 4, models.DirectionBackward, 1))
}

func TestNextConnectedPlayerIndex(t *testing.T) {
	makePlayers := func(connected ...bool) []models.Player {
		players := make([]models.Player, len(connected))
		for i, c := range connected {
			players[i] = models.Player{Position: i, IsConnected: c}
		}
		return players
	}

	// インデックス1が切断中なら飛ばして2へ
	players := makePlayers(true, false, true, true)
	assert.Equal(t, 2, NextConnectedPlayerIndex(0, players, models.DirectionForward, 0))

	// 全員切断なら番兵値
	assert.Equal(t, NoConnectedPlayer,
		NextConnectedPlayerIndex(0, makePlayers(false, false, false), models.DirectionForward, 0))

	// 一回休みで飛ばした先が切断中の場合も続けて探す
	players = makePlayers(true, true, false, true)
	assert.Equal(t, 3, NextConnectedPlayerIndex(0, players, models.DirectionForward, 1))
}

func TestReverseActsAsMissATurn(t *testing.T) {
	settings := models.DefaultGameSettings()
	assert.False(t, settings.EnableReverseFor2Players)

	assert.True(t, ReverseActsAsMissATurn(2, settings))
	assert.False(t, ReverseActsAsMissATurn(3, settings))

	settings.EnableReverseFor2Players = true
	assert.False(t, ReverseActsAsMissATurn(2, settings))
}

func TestValidatePlay(t *testing.T) {
	hand := []models.Card{
		phonicsCard("p1", "a"),
		phonicsCard("p2", "e"),
		actionCard("c1", models.ActionChange),
	}

	tt := []struct {
		name         string
		card         models.Card
		currentSuit  string
		declaredSuit string
		wantValid    bool
		wantError    string
	}{
		{"手札にあるカードは有効", phonicsCard("p1", "a"), "a", "", true, ""},
		{"手札に無いカード", phonicsCard("p9", "a"), "a", "", false, "You don't have this card"},
		{"スート不一致", phonicsCard("p2", "e"), "a", "", false, "This card doesn't match the current suit (a)"},
		{"Changeカードはスート宣言が必須", actionCard("c1", models.ActionChange), "a", "", false, "You must choose a new suit when playing a Change card"},
		{"Changeカードはスート宣言付きで有効", actionCard("c1", models.ActionChange), "a", "i", true, ""},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			v := ValidatePlay(tc.card, hand, tc.currentSuit, nil, tc.declaredSuit)
			assert.Equal(t, tc.wantValid, v.Valid)
			assert.Equal(t, tc.wantError, v.Error)
		})
	}
}

func TestDetermineStartingPlayer(t *testing.T) {
	randGen := rand.New(rand.NewSource(42))

	assert.Equal(t, 0, DetermineStartingPlayer(4, models.StartingModeYoungest, 0, randGen))
	assert.Equal(t, 2, DetermineStartingPlayer(4, models.StartingModeManual, 2, randGen))
	// 範囲外の手動指定は先頭にフォールバック
	assert.Equal(t, 0, DetermineStartingPlayer(4, models.StartingModeManual, 9, randGen))
	assert.Equal(t, 0, DetermineStartingPlayer(4, models.StartingModeManual, -1, randGen))

	for i := 0; i < 50; i++ {
		idx := DetermineStartingPlayer(4, models.StartingModeRandom, 0, randGen)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 4)
	}
}
