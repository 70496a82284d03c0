package client

import (
	"context"
	"sync"
	"time"

	"github.com/wengjjpaul/DKPhonicsCardGame/game"
	"github.com/wengjjpaul/DKPhonicsCardGame/models"

	"go.uber.org/zap"
)

// 適応型ポーリングループ。サーバーの正式な状態が唯一の真実であり、
// ローカルの状態（楽観的更新を含む）は常に再取得によって上書きされます。

// PollIntervals はポーリング間隔の設定です。
type PollIntervals struct {
	Waiting   time.Duration // ロビー待機中
	Playing   time.Duration // プレイ中（自分の手番かどうかに関わらず）
	BaseError time.Duration // エラー後の基本間隔（連続エラーごとに倍増）
	MaxError  time.Duration // エラー間隔の上限
}

// DefaultPollIntervals は既定のポーリング間隔です。
func DefaultPollIntervals() PollIntervals {
	return PollIntervals{
		Waiting:   5 * time.Second,
		Playing:   1500 * time.Millisecond,
		BaseError: 6 * time.Second,
		MaxError:  24 * time.Second,
	}
}

// Poller はゲーム状態のポーリングループを所有します。
// Start で開始し、コンテキストのキャンセルか Stop で完全に停止します。
// 停止後に遅延タイマーが発火することはありません。
type Poller struct {
	Client    *Client
	Intervals PollIntervals
	OnUpdate  func(*models.ClientGameState) // 状態が変化したときのみ呼ばれる

	mu                sync.Mutex
	gameState         *models.ClientGameState
	isPlayer          bool
	lastUpdatedAt     string
	lastError         error
	consecutiveErrors int
	visible           bool
	running           bool
	cancel            context.CancelFunc
	kick              chan struct{} // 即時フェッチの要求（可視化復帰など）
	pendingCards      map[string]bool
}

// NewPoller は指定クライアント用のポーラーを作成します。
func NewPoller(c *Client) *Poller {
	return &Poller{
		Client:       c,
		Intervals:    DefaultPollIntervals(),
		visible:      true,
		kick:         make(chan struct{}, 1),
		pendingCards: make(map[string]bool),
	}
}

// Start はポーリングループを開始します。すでに動いている場合は何もしません。
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.running = true
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(runCtx)
}

// Stop はポーリングを停止します。以降のポーリングは一切実行されません。
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SetVisible は実行コンテキストの可視状態を設定します。
// 非表示中はポーリングを停止し、表示に戻った時点で即時フェッチして再開します。
func (p *Poller) SetVisible(visible bool) {
	p.mu.Lock()
	wasVisible := p.visible
	p.visible = visible
	p.mu.Unlock()

	if visible && !wasVisible {
		// 復帰時は次の周期を待たずにフェッチする
		select {
		case p.kick <- struct{}{}:
		default:
		}
	}
}

// Game は最後に取得した状態を返します。
func (p *Poller) Game() *models.ClientGameState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gameState
}

// LastError は直近のポーリングエラーを返します（成功でクリアされる）。
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastError
}

// IsPlayer はリクエスト元がこのゲームの参加者かどうかを返します。
func (p *Poller) IsPlayer() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isPlayer
}

func (p *Poller) isVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *Poller) run(ctx context.Context) {
	for {
		// 非表示の間はポーリングしない。復帰（kick）で即時フェッチ。
		if !p.isVisible() {
			select {
			case <-ctx.Done():
				return
			case <-p.kick:
				continue
			}
		}

		finished := p.pollOnce(ctx)
		if finished {
			// ゲーム終了後はポーリングを完全に停止する
			p.Stop()
			return
		}

		timer := time.NewTimer(p.nextInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.kick:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// pollOnce は1回のフェッチを行い、ゲームが終了していれば true を返します。
func (p *Poller) pollOnce(ctx context.Context) bool {
	snapshot, err := p.Client.FetchGame(ctx)

	p.mu.Lock()
	if err != nil {
		p.lastError = err
		p.consecutiveErrors++
		p.mu.Unlock()
		if p.Client.Logger != nil {
			p.Client.Logger.Warn("ポーリングに失敗しました", zap.Error(err))
		}
		return false
	}

	p.lastError = nil
	p.consecutiveErrors = 0

	var changed bool
	// updatedAt が変わっていなければ状態を置き換えない（無変更ポーリングは冪等）
	if snapshot.UpdatedAt != p.lastUpdatedAt {
		p.lastUpdatedAt = snapshot.UpdatedAt
		p.gameState = snapshot.Game
		p.isPlayer = snapshot.IsPlayer
		changed = true
	}
	onUpdate := p.OnUpdate
	gameState := p.gameState
	finished := gameState != nil && gameState.Status == models.StatusFinished
	p.mu.Unlock()

	if changed && onUpdate != nil {
		onUpdate(gameState)
	}
	return finished
}

// nextInterval は次のポーリングまでの間隔を計算します。
// 連続エラー時は基本間隔を倍々で伸ばし、上限で頭打ちにします。
func (p *Poller) nextInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.consecutiveErrors > 0 {
		interval := p.Intervals.BaseError
		for i := 1; i < p.consecutiveErrors; i++ {
			interval *= 2
			if interval >= p.Intervals.MaxError {
				return p.Intervals.MaxError
			}
		}
		if interval > p.Intervals.MaxError {
			return p.Intervals.MaxError
		}
		return interval
	}

	if p.gameState == nil || p.gameState.Status == models.StatusWaiting {
		return p.Intervals.Waiting
	}
	return p.Intervals.Playing
}

// refresh は正式な状態を即時に再取得します。操作後の照合に使います。
func (p *Poller) refresh(ctx context.Context) {
	p.pollOnce(ctx)
}

// PlayCard はカードをプレイします。
// 体感の遅延を抑えるため、サーバー応答前にローカルの手札からカードを
// 楽観的に取り除きます。楽観的な状態は最終結果として信用せず、
// 成功・失敗どちらの場合も再取得で正式な状態に合わせます。
// 同じカードのリクエストが処理中の間は二重送信を拒否します。
func (p *Poller) PlayCard(ctx context.Context, cardID, declaredSuit string) (*ActionResponse, error) {
	p.mu.Lock()
	if p.pendingCards[cardID] {
		p.mu.Unlock()
		return &ActionResponse{Success: false, Error: "Card is already being played"}, nil
	}
	p.pendingCards[cardID] = true

	// 楽観的更新: ローカルの手札ビューからカードを取り除く
	if p.gameState != nil && p.gameState.CurrentPlayer != nil {
		hand := p.gameState.CurrentPlayer.Hand
		newHand := make([]models.Card, 0, len(hand))
		for _, c := range hand {
			if c.ID != cardID {
				newHand = append(newHand, c)
			}
		}
		p.gameState.CurrentPlayer.Hand = newHand
		// プレイが拒否されるとサーバーの updatedAt は変わらないため、
		// ローカルをダーティ扱いにして照合時に必ず正式な状態を取り込む
		p.lastUpdatedAt = ""
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.pendingCards, cardID)
		p.mu.Unlock()
	}()

	resp, err := p.Client.Play(ctx, cardID, declaredSuit)

	// 成功でも失敗でも正式な状態を取り直して楽観的更新を破棄する
	p.refresh(ctx)

	return resp, err
}

// DrawCard は山札からカードを引き、正式な状態を取り直します。
func (p *Poller) DrawCard(ctx context.Context) (*ActionResponse, error) {
	resp, err := p.Client.Draw(ctx)
	p.refresh(ctx)
	return resp, err
}

// JoinGame はゲームに参加し、正式な状態を取り直します。
func (p *Poller) JoinGame(ctx context.Context, playerName string) (*ActionResponse, error) {
	resp, err := p.Client.Join(ctx, playerName)
	p.refresh(ctx)
	return resp, err
}

// StartGame はゲームを開始し、正式な状態を取り直します。
func (p *Poller) StartGame(ctx context.Context) (*ActionResponse, error) {
	resp, err := p.Client.Start(ctx)
	p.refresh(ctx)
	return resp, err
}

// LeaveGame はポーリングを止めてから離脱を送信します。
func (p *Poller) LeaveGame(ctx context.Context) (*ActionResponse, error) {
	p.Stop()
	return p.Client.Leave(ctx)
}

// IsCardPending は指定カードのプレイリクエストが処理中かどうかを返します。
func (p *Poller) IsCardPending(cardID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pendingCards[cardID]
}

// IsMyTurn は自分の手番かどうかを返します。
func (p *Poller) IsMyTurn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gameState != nil && p.gameState.CurrentPlayer != nil && p.gameState.CurrentPlayer.IsCurrentTurn
}

// CanPlay は指定カードが現在のスート制約の下で出せるかどうかを返します。
func (p *Poller) CanPlay(card models.Card) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gameState == nil {
		return false
	}
	return game.CanPlayCard(card, p.gameState.CurrentSuit, p.gameState.TopCard)
}

// MustDraw は手札に出せるカードが1枚もないかどうかを返します。
func (p *Poller) MustDraw() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gameState == nil || p.gameState.CurrentPlayer == nil {
		return false
	}
	return game.MustDraw(p.gameState.CurrentPlayer.Hand, p.gameState.CurrentSuit, p.gameState.TopCard)
}
