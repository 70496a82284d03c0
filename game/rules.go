package game

import (
	"fmt"
	"math/rand"

	"github.com/wengjjpaul/DKPhonicsCardGame/models"
)

// ルールエンジン。全て副作用のない純粋関数で、明示的な入力のみで判定します。

// NoConnectedPlayer は接続中のプレイヤーが1人も見つからない場合の番兵値です。
const NoConnectedPlayer = -1

// CanPlayCard はカードが場に出せるかを判定します。
// ルール:
//  1. フォニックスカードは現在のスート（母音）と一致する必要がある
//  2. アクションカードは常に出せる
//
// topCard は現在の判定には使用しませんが、将来のルール（単語マッチ等）の
// ためにシグネチャとして維持しています。
func CanPlayCard(cardToPlay models.Card, currentSuit string, topCard *models.Card) bool {
	_ = topCard

	// スート制約がない場合（ゲーム開始時）はどのカードでも出せる
	if currentSuit == "" {
		return true
	}

	if cardToPlay.IsAction() {
		return true
	}

	if cardToPlay.IsPhonics() {
		return cardToPlay.Suit == currentSuit
	}

	return false
}

// PlayableCards は手札の中から出せるカードを抽出します。
func PlayableCards(hand []models.Card, currentSuit string, topCard *models.Card) []models.Card {
	var playable []models.Card
	for _, c := range hand {
		if CanPlayCard(c, currentSuit, topCard) {
			playable = append(playable, c)
		}
	}
	return playable
}

// MustDraw は出せるカードが1枚もない（＝引くしかない）かどうかを返します。
func MustDraw(hand []models.Card, currentSuit string, topCard *models.Card) bool {
	return len(PlayableCards(hand, currentSuit, topCard)) == 0
}

// NextPlayerIndex は次の手番プレイヤーのインデックスを計算します。
// skip は一回休みで飛ばす人数。進行方向に (1+skip) 進み、範囲外は折り返します。
func NextPlayerIndex(currentIndex, totalPlayers, direction, skip int) int {
	steps := 1 + skip
	nextIndex := currentIndex + direction*steps

	for nextIndex < 0 {
		nextIndex += totalPlayers
	}
	return nextIndex % totalPlayers
}

// NextConnectedPlayerIndex は切断中のプレイヤーを飛ばして次の接続中プレイヤーを探します。
// 無限ループを避けるため走査は totalPlayers 回まで。
// 接続中のプレイヤーが1人もいない場合は NoConnectedPlayer を返します。
func NextConnectedPlayerIndex(currentIndex int, players []models.Player, direction, skip int) int {
	totalPlayers := len(players)
	nextIndex := NextPlayerIndex(currentIndex, totalPlayers, direction, skip)

	for i := 0; i < totalPlayers; i++ {
		if players[nextIndex].IsConnected {
			return nextIndex
		}
		nextIndex = NextPlayerIndex(nextIndex, totalPlayers, direction, 0)
	}

	return NoConnectedPlayer
}

// ReverseActsAsMissATurn は Reverse カードを一回休みとして扱うかどうかを返します。
// 2人対戦では Reverse は進行方向的に無意味なため、設定で無効化されている限り
// 一回休みとして扱います。
func ReverseActsAsMissATurn(totalPlayers int, settings models.GameSettings) bool {
	return totalPlayers == 2 && !settings.EnableReverseFor2Players
}

// PlayValidation はプレイ検証の結果です。
type PlayValidation struct {
	Valid bool
	Error string
}

// ValidatePlay はカードプレイの妥当性を検証します。
// 手札に無い・スート不一致・Change カードでスート未宣言の場合に失敗します。
func ValidatePlay(cardToPlay models.Card, hand []models.Card, currentSuit string, topCard *models.Card, declaredSuit string) PlayValidation {
	hasCard := false
	for _, c := range hand {
		if c.ID == cardToPlay.ID {
			hasCard = true
			break
		}
	}
	if !hasCard {
		return PlayValidation{Valid: false, Error: "You don't have this card"}
	}

	if !CanPlayCard(cardToPlay, currentSuit, topCard) {
		return PlayValidation{Valid: false, Error: fmt.Sprintf("This card doesn't match the current suit (%s)", currentSuit)}
	}

	if cardToPlay.IsAction() && cardToPlay.Action == models.ActionChange && declaredSuit == "" {
		return PlayValidation{Valid: false, Error: "You must choose a new suit when playing a Change card"}
	}

	return PlayValidation{Valid: true}
}

// DetermineStartingPlayer は最初の手番プレイヤーを決定します。
// youngest モードはサーバー側では常にインデックス0を返します
// （「一番年下の子から」の調整はUI側の運用に委ねる既知の制限）。
func DetermineStartingPlayer(totalPlayers int, mode string, manualIndex int, randGen *rand.Rand) int {
	switch mode {
	case models.StartingModeRandom:
		return randGen.Intn(totalPlayers)
	case models.StartingModeYoungest:
		return 0
	case models.StartingModeManual:
		if manualIndex >= 0 && manualIndex < totalPlayers {
			return manualIndex
		}
		return 0
	default:
		return 0
	}
}
