package game

import (
	"math/rand"
	"testing"

	"github.com/wengjjpaul/DKPhonicsCardGame/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalGame(t *testing.T) *LocalGame {
	t.Helper()
	lg := NewLocalGame(rand.New(rand.NewSource(21)))
	lg.InitGame([]string{"Mia", "Leo"}, models.DefaultGameSettings())
	return lg
}

func TestLocalGameInit(t *testing.T) {
	lg := newTestLocalGame(t)

	require.NotNil(t, lg.State)
	assert.Equal(t, models.StatusPlaying, lg.State.Status)
	assert.False(t, lg.IsHandRevealed)
	require.Len(t, lg.State.Players, 2)
	assert.Equal(t, "local-player-0", lg.State.Players[0].SessionID)
	assert.Equal(t, "Mia", lg.State.Players[0].Name)
	assert.True(t, lg.State.Players[0].IsHost)
	assert.Equal(t, models.TotalCardCount, totalCards(lg.State))
}

func TestLocalGameHandReveal(t *testing.T) {
	lg := newTestLocalGame(t)

	lg.RevealHand()
	assert.True(t, lg.IsHandRevealed)

	lg.SelectCard("phonics-1")
	lg.OpenSuitPicker()
	lg.HideHand()
	assert.False(t, lg.IsHandRevealed)
	assert.Empty(t, lg.SelectedCardID, "手札を伏せたら選択も解除される")
	assert.False(t, lg.ShowSuitPicker)
}

func TestLocalGamePlaySelectedCard(t *testing.T) {
	lg := newTestLocalGame(t)

	result := lg.PlaySelectedCard("")
	assert.False(t, result.Success)
	assert.Equal(t, "No card selected", result.Error)

	// 引くしかない局面ならカードを引いて手番を渡す
	if lg.MustDrawCard() {
		before := lg.GetCurrentPlayer().Position
		result = lg.DrawCardAction()
		require.True(t, result.Success)
		assert.NotEqual(t, before, lg.GetCurrentPlayer().Position)
		return
	}

	playable := lg.GetPlayableCards()
	require.NotEmpty(t, playable)
	card := playable[0]
	lg.RevealHand()
	lg.SelectCard(card.ID)

	if card.IsAction() && card.Action == models.ActionChange {
		// スート未宣言は選択UIを開いて失敗する
		result = lg.PlaySelectedCard("")
		assert.False(t, result.Success)
		assert.True(t, lg.ShowSuitPicker)
		result = lg.PlaySelectedCard("a")
	} else {
		result = lg.PlaySelectedCard("")
	}

	require.True(t, result.Success)
	assert.NotEmpty(t, lg.LastEvents)
	assert.Equal(t, EventCardPlayed, lg.LastEvents[0].Type)
	assert.Empty(t, lg.SelectedCardID)
	assert.False(t, lg.IsHandRevealed, "プレイ後は次の人に渡すため手札を伏せる")
	assert.Equal(t, models.TotalCardCount, totalCards(lg.State))
}

func TestLocalGameReset(t *testing.T) {
	lg := newTestLocalGame(t)
	lg.RevealHand()
	lg.Reset()

	assert.Nil(t, lg.State)
	assert.False(t, lg.IsHandRevealed)
	assert.Nil(t, lg.GetCurrentPlayer())
	assert.Nil(t, lg.GetTopCard())
	assert.False(t, lg.MustDrawCard())
}
