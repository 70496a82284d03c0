package game

import (
	"math/rand"
	"time"

	"github.com/wengjjpaul/DKPhonicsCardGame/models"
)

// ゲームエンジン。PlayCard / DrawCard の2つの状態遷移を提供します。
// 入力の GameState は変更せず、必ず Clone したスナップショットを構築して返します。

// GameEvent は1回の状態遷移で発生したドメインイベントです。
// 発生順に並び、UI・サウンド側はこれを購読して演出します。
type GameEvent struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// イベント種別
const (
	EventCardPlayed        = "card_played"
	EventCardDrawn         = "card_drawn"
	EventSuitChanged       = "suit_changed"
	EventTurnSkipped       = "turn_skipped"
	EventDirectionReversed = "direction_reversed"
	EventDeckRefreshed     = "deck_refreshed"
	EventPlayerWon         = "player_won"
)

// ActionResult は PlayCard / DrawCard の結果です。
// ルール違反は error ではなく構造化された失敗として返します（状態は一切変更されない）。
type ActionResult struct {
	Success  bool
	Error    string
	NewState *models.GameState
	Events   []GameEvent
}

// NewRandGen はローカルな乱数生成器を作ります。
// math/rand の生成器はゴルーチン安全ではないため、
// ハンドラ間で共有せずリクエストごとに生成して使います。
func NewRandGen() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle は Fisher-Yates アルゴリズムでカードをシャッフルしたコピーを返します。
func Shuffle(cards []models.Card, randGen *rand.Rand) []models.Card {
	shuffled := make([]models.Card, len(cards))
	copy(shuffled, cards)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := randGen.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// CreateDeck はシャッフル済みの50枚のデッキを返します。
func CreateDeck(randGen *rand.Rand) []models.Card {
	return Shuffle(AllCards(), randGen)
}

// GenerateGameCode は4文字の参加コードを生成します。
// I と O は数字と紛らわしいため除外しています。
func GenerateGameCode(randGen *rand.Rand) string {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	code := make([]byte, 4)
	for i := range code {
		code[i] = chars[randGen.Intn(len(chars))]
	}
	return string(code)
}

// TopCard は場の一番上のカードを返します。場が空なら nil。
func TopCard(state *models.GameState) *models.Card {
	if len(state.PlayPile) == 0 {
		return nil
	}
	top := state.PlayPile[len(state.PlayPile)-1]
	return &top
}

// CurrentPlayer は現在手番のプレイヤーを返します。
func CurrentPlayer(state *models.GameState) *models.Player {
	return &state.Players[state.CurrentPlayerIndex]
}

// PlayerBySession はセッションIDからプレイヤーを検索します。
func PlayerBySession(state *models.GameState, sessionID string) *models.Player {
	for i := range state.Players {
		if state.Players[i].SessionID == sessionID {
			return &state.Players[i]
		}
	}
	return nil
}

// IsPlayerTurn は指定セッションのプレイヤーが手番かどうかを返します。
func IsPlayerTurn(state *models.GameState, sessionID string) bool {
	return CurrentPlayer(state).SessionID == sessionID
}

// IsGameOver はゲームが終了しているかどうかを返します。
func IsGameOver(state *models.GameState) bool {
	return state.Status == models.StatusFinished
}

// PlayCard は手札からカードを1枚プレイします。
// 検証 → 手札から除去して場に追加 → カード効果の適用 → 勝利判定 → 手番の前進、の順。
// 失敗時は状態を一切変更せずエラーのみ返します。
func PlayCard(state *models.GameState, playerSessionID, cardID, declaredSuit string) ActionResult {
	var events []GameEvent

	// 手番の確認
	currentPlayer := state.Players[state.CurrentPlayerIndex]
	if currentPlayer.SessionID != playerSessionID {
		return ActionResult{Success: false, Error: "Not your turn", Events: events}
	}

	// カタログからカードを解決
	card, ok := GetCardByID(cardID)
	if !ok {
		return ActionResult{Success: false, Error: "Card not found", Events: events}
	}

	// プレイの検証（失敗時はここで打ち切り、状態は未変更のまま）
	validation := ValidatePlay(card, currentPlayer.Hand, state.CurrentSuit, TopCard(state), declaredSuit)
	if !validation.Valid {
		return ActionResult{Success: false, Error: validation.Error, Events: events}
	}

	// 新しいスナップショットを構築
	newState := state.Clone()
	actingPlayer := &newState.Players[newState.CurrentPlayerIndex]

	hand := make([]models.Card, 0, len(actingPlayer.Hand)-1)
	for _, c := range actingPlayer.Hand {
		if c.ID != cardID {
			hand = append(hand, c)
		}
	}
	actingPlayer.Hand = hand
	newState.PlayPile = append(newState.PlayPile, card)

	events = append(events, GameEvent{
		Type: EventCardPlayed,
		Data: map[string]interface{}{"playerId": currentPlayer.ID, "card": card, "playerName": currentPlayer.Name},
	})

	// カード効果の適用
	skipNext := 0
	switch {
	case card.IsPhonics():
		newState.CurrentSuit = card.Suit
		events = append(events, GameEvent{Type: EventSuitChanged, Data: map[string]interface{}{"newSuit": card.Suit}})
	case card.Action == models.ActionChange:
		// declaredSuit は検証済みのため必ず存在する
		newState.CurrentSuit = declaredSuit
		events = append(events, GameEvent{Type: EventSuitChanged, Data: map[string]interface{}{"newSuit": declaredSuit}})
	case card.Action == models.ActionMissATurn:
		skipNext = 1
		events = append(events, GameEvent{Type: EventTurnSkipped, Data: map[string]interface{}{"skippedPlayers": 1}})
	case card.Action == models.ActionReverse:
		if ReverseActsAsMissATurn(len(newState.Players), newState.Settings) {
			skipNext = 1
			events = append(events, GameEvent{Type: EventTurnSkipped, Data: map[string]interface{}{"skippedPlayers": 1}})
		} else {
			newState.Direction = state.Direction * -1
			events = append(events, GameEvent{Type: EventDirectionReversed, Data: map[string]interface{}{}})
		}
	}

	// 勝利判定。手札が空になったら手番を進めずに終了。
	if len(actingPlayer.Hand) == 0 {
		newState.Status = models.StatusFinished
		newState.WinnerSessionID = currentPlayer.SessionID
		events = append(events, GameEvent{
			Type: EventPlayerWon,
			Data: map[string]interface{}{"playerId": currentPlayer.ID, "playerName": currentPlayer.Name},
		})
	} else {
		// 切断中のプレイヤーを飛ばして手番を進める
		newState.CurrentPlayerIndex = NextConnectedPlayerIndex(
			state.CurrentPlayerIndex, newState.Players, newState.Direction, skipNext)

		// 接続中のプレイヤーが誰もいない退化状態は、安全策としてゲーム終了扱い
		if newState.CurrentPlayerIndex == NoConnectedPlayer {
			newState.Status = models.StatusFinished
			newState.WinnerSessionID = currentPlayer.SessionID
			events = append(events, GameEvent{
				Type: EventPlayerWon,
				Data: map[string]interface{}{"playerId": currentPlayer.ID, "playerName": currentPlayer.Name},
			})
		}
	}

	return ActionResult{Success: true, NewState: newState, Events: events}
}

// DrawCard は山札からカードを1枚引きます。
// 出せるカードがある間は引けません。山札が尽きたら場札（一番上以外）を
// シャッフルして補充します。引いたら手番は必ず次に移ります。
func DrawCard(state *models.GameState, playerSessionID string, randGen *rand.Rand) ActionResult {
	var events []GameEvent

	// 手番の確認
	currentPlayer := state.Players[state.CurrentPlayerIndex]
	if currentPlayer.SessionID != playerSessionID {
		return ActionResult{Success: false, Error: "Not your turn", Events: events}
	}

	// 出せるカードを持っている場合は引けない
	if !MustDraw(currentPlayer.Hand, state.CurrentSuit, TopCard(state)) {
		return ActionResult{Success: false, Error: "You have a playable card", Events: events}
	}

	newState := state.Clone()

	// 山札が空なら場札から補充（一番上のカードだけ場に残す）
	if len(newState.DrawPile) == 0 {
		newState.DrawPile = refreshDrawPile(newState.PlayPile, randGen)
		newState.PlayPile = []models.Card{newState.PlayPile[len(newState.PlayPile)-1]}
		events = append(events, GameEvent{Type: EventDeckRefreshed, Data: map[string]interface{}{}})
	}

	if len(newState.DrawPile) == 0 {
		return ActionResult{Success: false, Error: "No cards to draw", Events: events}
	}

	// 山札の先頭を手札へ
	drawnCard := newState.DrawPile[0]
	newState.DrawPile = newState.DrawPile[1:]
	actingPlayer := &newState.Players[newState.CurrentPlayerIndex]
	actingPlayer.Hand = append(actingPlayer.Hand, drawnCard)

	events = append(events, GameEvent{
		Type: EventCardDrawn,
		Data: map[string]interface{}{"playerId": currentPlayer.ID, "playerName": currentPlayer.Name},
	})

	// 引いたカードが出せるかどうかに関わらず手番は次へ
	newState.CurrentPlayerIndex = NextConnectedPlayerIndex(
		state.CurrentPlayerIndex, newState.Players, state.Direction, 0)

	if newState.CurrentPlayerIndex == NoConnectedPlayer {
		newState.Status = models.StatusFinished
		newState.WinnerSessionID = currentPlayer.SessionID
		events = append(events, GameEvent{
			Type: EventPlayerWon,
			Data: map[string]interface{}{"playerId": currentPlayer.ID, "playerName": currentPlayer.Name},
		})
	}

	return ActionResult{Success: true, NewState: newState, Events: events}
}

// refreshDrawPile は場札の一番上以外をシャッフルして新しい山札を作ります。
func refreshDrawPile(playPile []models.Card, randGen *rand.Rand) []models.Card {
	if len(playPile) <= 1 {
		return nil
	}
	return Shuffle(playPile[:len(playPile)-1], randGen)
}
