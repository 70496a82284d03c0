package game

import (
	"fmt"
	"math/rand"

	"github.com/wengjjpaul/DKPhonicsCardGame/models"
)

// ローカル（パス＆プレイ）モード用のゲームセッション。
// グローバルなストアではなく、呼び出し側が保持する明示的なセッションオブジェクトです。
// 1台の端末を回して遊ぶ前提のため排他制御は持ちません。

// LocalGame はパス＆プレイの1ゲーム分の状態を保持します。
type LocalGame struct {
	State          *models.GameState
	IsHandRevealed bool       // 端末を渡した後に手札を開いたかどうか
	SelectedCardID string     // 選択中のカード
	ShowSuitPicker bool       // Change カードのスート選択中かどうか
	LastEvents     []GameEvent

	randGen *rand.Rand
}

// NewLocalGame はローカルゲームのセッションを作成します。
func NewLocalGame(randGen *rand.Rand) *LocalGame {
	return &LocalGame{randGen: randGen}
}

// InitGame はプレイヤー名のリストから新しいローカルゲームを開始します。
// セッションIDの代わりにローカル用の疑似IDを割り当てます。
func (lg *LocalGame) InitGame(playerNames []string, settings models.GameSettings) {
	players := make([]models.PlayerJoinInfo, len(playerNames))
	for i, name := range playerNames {
		players[i] = models.PlayerJoinInfo{
			SessionID: fmt.Sprintf("local-player-%d", i),
			Name:      name,
		}
	}

	lg.State = InitializeGame(players, settings, players[0].SessionID, lg.randGen)
	lg.IsHandRevealed = false
	lg.SelectedCardID = ""
	lg.ShowSuitPicker = false
	lg.LastEvents = nil
}

// RevealHand は現在手番のプレイヤーの手札を開きます。
func (lg *LocalGame) RevealHand() { lg.IsHandRevealed = true }

// HideHand は端末を次のプレイヤーに渡すために手札を伏せます。
func (lg *LocalGame) HideHand() {
	lg.IsHandRevealed = false
	lg.SelectedCardID = ""
	lg.ShowSuitPicker = false
}

// SelectCard はプレイするカードを選択します。空文字で選択解除。
func (lg *LocalGame) SelectCard(cardID string) { lg.SelectedCardID = cardID }

// OpenSuitPicker / CloseSuitPicker はスート選択UIの表示状態を切り替えます。
func (lg *LocalGame) OpenSuitPicker()  { lg.ShowSuitPicker = true }
func (lg *LocalGame) CloseSuitPicker() { lg.ShowSuitPicker = false }

// PlaySelectedCard は選択中のカードをプレイします。
// Change カードでスート未宣言の場合はスート選択を開いて失敗を返します。
func (lg *LocalGame) PlaySelectedCard(declaredSuit string) ActionResult {
	if lg.State == nil || lg.SelectedCardID == "" {
		return ActionResult{Success: false, Error: "No card selected"}
	}

	currentPlayer := CurrentPlayer(lg.State)
	var card *models.Card
	for i := range currentPlayer.Hand {
		if currentPlayer.Hand[i].ID == lg.SelectedCardID {
			card = &currentPlayer.Hand[i]
			break
		}
	}
	if card == nil {
		return ActionResult{Success: false, Error: "Card not found in hand"}
	}

	if card.IsAction() && card.Action == models.ActionChange && declaredSuit == "" {
		lg.ShowSuitPicker = true
		return ActionResult{Success: false, Error: "Please select a new suit"}
	}

	result := PlayCard(lg.State, currentPlayer.SessionID, lg.SelectedCardID, declaredSuit)
	if result.Success {
		lg.State = result.NewState
		lg.LastEvents = result.Events
		lg.SelectedCardID = ""
		lg.ShowSuitPicker = false
		// 次のプレイヤーに渡すため手札を伏せる（勝利時は開いたまま）
		if lg.State.Status == models.StatusPlaying {
			lg.IsHandRevealed = false
		}
	}
	return result
}

// DrawCardAction は現在手番のプレイヤーがカードを1枚引きます。
func (lg *LocalGame) DrawCardAction() ActionResult {
	if lg.State == nil {
		return ActionResult{Success: false, Error: "Game not started"}
	}

	currentPlayer := CurrentPlayer(lg.State)
	result := DrawCard(lg.State, currentPlayer.SessionID, lg.randGen)
	if result.Success {
		lg.State = result.NewState
		lg.LastEvents = result.Events
		lg.IsHandRevealed = false
	}
	return result
}

// Reset はセッションを初期状態に戻します。
func (lg *LocalGame) Reset() {
	lg.State = nil
	lg.IsHandRevealed = false
	lg.SelectedCardID = ""
	lg.ShowSuitPicker = false
	lg.LastEvents = nil
}

// GetCurrentPlayer は現在手番のプレイヤーを返します。
func (lg *LocalGame) GetCurrentPlayer() *models.Player {
	if lg.State == nil {
		return nil
	}
	return CurrentPlayer(lg.State)
}

// GetTopCard は場の一番上のカードを返します。
func (lg *LocalGame) GetTopCard() *models.Card {
	if lg.State == nil {
		return nil
	}
	return TopCard(lg.State)
}

// GetPlayableCards は現在手番のプレイヤーが出せるカードを返します。
func (lg *LocalGame) GetPlayableCards() []models.Card {
	if lg.State == nil {
		return nil
	}
	player := CurrentPlayer(lg.State)
	return PlayableCards(player.Hand, lg.State.CurrentSuit, TopCard(lg.State))
}

// MustDrawCard は現在手番のプレイヤーが引くしかないかどうかを返します。
func (lg *LocalGame) MustDrawCard() bool {
	if lg.State == nil {
		return false
	}
	player := CurrentPlayer(lg.State)
	return MustDraw(player.Hand, lg.State.CurrentSuit, TopCard(lg.State))
}
