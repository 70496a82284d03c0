package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/wengjjpaul/DKPhonicsCardGame/models"
)

// ゲームのライフサイクル（配り・開始・離脱の解決）に関するロジック。
// 永続化はストア側の責務なので、ここは状態の構築と判断だけを行います。

// MaxCardsPerPlayer は1人あたりの配布枚数の上限です。
// 最大人数（6人）に配っても最初の場札用のカードが必ず残る値。
const MaxCardsPerPlayer = 8

// CanDeal は指定の人数・枚数で配った後に最初の場札用のカードが残るかを返します。
// ゲーム作成時・開始時の事前検証に使います。
func CanDeal(playerCount, cardsPerPlayer int) bool {
	return playerCount*cardsPerPlayer < models.TotalCardCount
}

// DealCards はデッキからプレイヤーに1枚ずつ順番にカードを配ります。
func DealCards(deck []models.Card, playerCount, cardsPerPlayer int) (hands [][]models.Card, remainingDeck []models.Card) {
	hands = make([][]models.Card, playerCount)
	deckIndex := 0

	for card := 0; card < cardsPerPlayer; card++ {
		for player := 0; player < playerCount; player++ {
			if deckIndex < len(deck) {
				hands[player] = append(hands[player], deck[deckIndex])
				deckIndex++
			}
		}
	}

	return hands, deck[deckIndex:]
}

// SelectStarter は配り終えた残りデッキから最初の場札を決めます。
// remainingDeck は1枚以上であること（CanDeal で事前に検証する）。
// 先頭がアクションカードだった場合はデッキに戻してシャッフルし、
// 最初に見つかったフォニックスカードを場札にします。これにより
// 開始時の場札は必ずスートが確定したフォニックスカードになります。
func SelectStarter(remainingDeck []models.Card, randGen *rand.Rand) (playPile, drawPile []models.Card, currentSuit string) {
	starterCard := remainingDeck[0]
	drawPile = remainingDeck[1:]

	if starterCard.IsAction() {
		// アクションカードを戻してシャッフルし、フォニックスカードを探す
		reshuffled := Shuffle(append([]models.Card{starterCard}, drawPile...), randGen)
		phonicsIndex := -1
		for i, c := range reshuffled {
			if c.IsPhonics() {
				phonicsIndex = i
				break
			}
		}
		if phonicsIndex != -1 {
			starterCard = reshuffled[phonicsIndex]
			drawPile = append(append([]models.Card{}, reshuffled[:phonicsIndex]...), reshuffled[phonicsIndex+1:]...)
		} else {
			drawPile = reshuffled[1:]
			starterCard = reshuffled[0]
		}
	}

	playPile = []models.Card{starterCard}
	if starterCard.IsPhonics() {
		currentSuit = starterCard.Suit
	}
	return playPile, drawPile, currentSuit
}

// InitializeGame は参加者一覧から開始済み（playing）のゲーム状態を構築します。
// ローカル（パス＆プレイ）モードはこれをそのまま使います。
// オンラインモードは waiting 状態のレコードをストアに作り、開始時に
// DealCards / SelectStarter を使って同じ構築を行います。
func InitializeGame(players []models.PlayerJoinInfo, settings models.GameSettings, hostSessionID string, randGen *rand.Rand) *models.GameState {
	deck := CreateDeck(randGen)
	hands, remainingDeck := DealCards(deck, len(players), settings.CardsPerPlayer)
	playPile, drawPile, currentSuit := SelectStarter(remainingDeck, randGen)

	gamePlayers := make([]models.Player, len(players))
	now := time.Now()
	for i, p := range players {
		gamePlayers[i] = models.Player{
			ID:          uuid.New().String(),
			SessionID:   p.SessionID,
			Name:        p.Name,
			Hand:        hands[i],
			Position:    i,
			IsHost:      p.SessionID == hostSessionID,
			IsConnected: true,
			LastSeen:    now,
		}
	}

	startingPlayer := DetermineStartingPlayer(
		len(players), settings.StartingPlayerMode, settings.StartingPlayerIndex, randGen)

	return &models.GameState{
		Code:               GenerateGameCode(randGen),
		Status:             models.StatusPlaying,
		HostSessionID:      hostSessionID,
		Players:            gamePlayers,
		CurrentPlayerIndex: startingPlayer,
		Direction:          models.DirectionForward,
		CurrentSuit:        currentSuit,
		DrawPile:           drawPile,
		PlayPile:           playPile,
		WinnerSessionID:    "",
		Settings:           settings,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// LeaveResolution はゲーム中の離脱をどう解決するかの判断結果です。
type LeaveResolution struct {
	GameEnded       bool
	WinnerSessionID string // 残った接続中プレイヤーが1人だけの場合のみ設定
	AdvanceTurn     bool
	NextPlayerIndex int
}

// ResolveLeave はプレイ中のゲームからの離脱を解決します。
// 離脱者を除いた接続中プレイヤーが2人未満ならゲームを終了し、
// ちょうど1人残っていればそのプレイヤーを勝者にします。
// 離脱者が手番を持っていた場合は、切断後の接続状況で次の手番を計算します。
// 判断は呼び出し時点の最新の状態に対して行うこと（離脱と手番操作の競合を狭めるため）。
func ResolveLeave(state *models.GameState, leavingSessionID string) LeaveResolution {
	// 離脱者を切断扱いにした接続状況のビューを作る
	players := make([]models.Player, len(state.Players))
	copy(players, state.Players)
	leavingIndex := -1
	for i := range players {
		if players[i].SessionID == leavingSessionID {
			players[i].IsConnected = false
			leavingIndex = i
		}
	}

	connectedCount := 0
	var remaining *models.Player
	for i := range players {
		if players[i].IsConnected {
			connectedCount++
			remaining = &players[i]
		}
	}

	// 残りが2人未満なら即終了
	if connectedCount < models.MinPlayers {
		res := LeaveResolution{GameEnded: true}
		if connectedCount == 1 {
			res.WinnerSessionID = remaining.SessionID
		}
		return res
	}

	// 離脱者が手番だった場合のみ手番を進める
	if leavingIndex == state.CurrentPlayerIndex {
		next := NextConnectedPlayerIndex(state.CurrentPlayerIndex, players, state.Direction, 0)
		if next != NoConnectedPlayer {
			return LeaveResolution{AdvanceTurn: true, NextPlayerIndex: next}
		}
	}

	return LeaveResolution{}
}
