package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wengjjpaul/DKPhonicsCardGame/game"
	"github.com/wengjjpaul/DKPhonicsCardGame/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotServer はゲーム状態を返すテスト用サーバーです。
// 返すスナップショットは差し替え可能で、リクエスト数を数えます。
type snapshotServer struct {
	server     *httptest.Server
	fetches    int64
	plays      int64
	rejectPlay int64        // 0以外なら /play を400で拒否する
	snapshot   atomic.Value // GameSnapshot
}

func newSnapshotServer(t *testing.T, snap GameSnapshot) *snapshotServer {
	t.Helper()
	s := &snapshotServer{}
	s.snapshot.Store(snap)

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			atomic.AddInt64(&s.fetches, 1)
			json.NewEncoder(w).Encode(s.snapshot.Load())
		case strings.HasSuffix(r.URL.Path, "/play"):
			atomic.AddInt64(&s.plays, 1)
			if atomic.LoadInt64(&s.rejectPlay) != 0 {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ActionResponse{Success: false, Error: "Not your turn"})
				return
			}
			json.NewEncoder(w).Encode(ActionResponse{Success: true})
		default:
			json.NewEncoder(w).Encode(ActionResponse{Success: true})
		}
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *snapshotServer) newPoller() *Poller {
	p := NewPoller(&Client{
		BaseURL:    s.server.URL,
		GameCode:   "WXYZ",
		HTTPClient: s.server.Client(),
	})
	// テストは実時間で待つため短い間隔にする
	p.Intervals = PollIntervals{
		Waiting:   5 * time.Millisecond,
		Playing:   5 * time.Millisecond,
		BaseError: 5 * time.Millisecond,
		MaxError:  20 * time.Millisecond,
	}
	return p
}

func playingSnapshot(updatedAt string, hand []models.Card) GameSnapshot {
	return GameSnapshot{
		Success:   true,
		IsPlayer:  true,
		UpdatedAt: updatedAt,
		Game: &models.ClientGameState{
			Code:   "WXYZ",
			Status: models.StatusPlaying,
			CurrentPlayer: &models.CurrentPlayerState{
				PlayerGameState: models.PlayerGameState{ID: "p1", IsCurrentTurn: true},
				Hand:            hand,
			},
		},
	}
}

func TestNextIntervalByStatus(t *testing.T) {
	p := NewPoller(&Client{})

	// 状態未取得・ロビー待機中は遅い間隔
	assert.Equal(t, p.Intervals.Waiting, p.nextInterval())

	p.gameState = &models.ClientGameState{Status: models.StatusWaiting}
	assert.Equal(t, p.Intervals.Waiting, p.nextInterval())

	p.gameState = &models.ClientGameState{Status: models.StatusPlaying}
	assert.Equal(t, p.Intervals.Playing, p.nextInterval())
}

func TestNextIntervalErrorBackoff(t *testing.T) {
	p := NewPoller(&Client{})
	p.gameState = &models.ClientGameState{Status: models.StatusPlaying}

	// 連続エラーごとに 6s → 12s → 24s と倍増し、上限で頭打ち
	expected := []time.Duration{
		6 * time.Second,
		12 * time.Second,
		24 * time.Second,
		24 * time.Second,
		24 * time.Second,
	}
	for i, want := range expected {
		p.consecutiveErrors = i + 1
		assert.Equal(t, want, p.nextInterval(), "連続エラー%d回目", i+1)
	}

	// 成功でリセットされたら通常の間隔に戻る
	p.consecutiveErrors = 0
	assert.Equal(t, p.Intervals.Playing, p.nextInterval())
}

func TestPollOnceChangeDetection(t *testing.T) {
	cat, _ := game.GetCardByID("phonics-1")
	s := newSnapshotServer(t, playingSnapshot("2026-08-31T10:00:00.000000000Z", []models.Card{cat}))
	p := s.newPoller()

	var updates int64
	p.OnUpdate = func(*models.ClientGameState) { atomic.AddInt64(&updates, 1) }

	ctx := context.Background()
	p.pollOnce(ctx)
	p.pollOnce(ctx)
	p.pollOnce(ctx)
	assert.Equal(t, int64(1), atomic.LoadInt64(&updates), "updatedAt が同じ間は通知しない")

	s.snapshot.Store(playingSnapshot("2026-08-31T10:00:01.000000000Z", []models.Card{cat}))
	p.pollOnce(ctx)
	assert.Equal(t, int64(2), atomic.LoadInt64(&updates))
	assert.True(t, p.IsPlayer())
	assert.True(t, p.IsMyTurn())
}

func TestPollerStopsWhenGameFinished(t *testing.T) {
	snap := playingSnapshot("2026-08-31T10:00:00.000000000Z", nil)
	snap.Game.Status = models.StatusFinished
	s := newSnapshotServer(t, snap)
	p := s.newPoller()

	p.Start(context.Background())

	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return !p.running
	}, time.Second, 5*time.Millisecond, "ゲーム終了後はポーリングが止まる")

	fetched := atomic.LoadInt64(&s.fetches)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, fetched, atomic.LoadInt64(&s.fetches), "停止後にリクエストが飛ばない")
}

func TestPollerHiddenSuspendsPolling(t *testing.T) {
	cat, _ := game.GetCardByID("phonics-1")
	s := newSnapshotServer(t, playingSnapshot("2026-08-31T10:00:00.000000000Z", []models.Card{cat}))
	p := s.newPoller()

	p.SetVisible(false)
	p.Start(context.Background())
	defer p.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt64(&s.fetches), "非表示の間はポーリングしない")

	p.SetVisible(true)
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&s.fetches) > 0
	}, time.Second, 5*time.Millisecond, "表示に戻ったら即時フェッチする")
}

func TestPlayCardRejectsDoubleSubmit(t *testing.T) {
	cat, _ := game.GetCardByID("phonics-1")
	s := newSnapshotServer(t, playingSnapshot("2026-08-31T10:00:00.000000000Z", []models.Card{cat}))
	p := s.newPoller()

	p.mu.Lock()
	p.pendingCards[cat.ID] = true
	p.mu.Unlock()
	assert.True(t, p.IsCardPending(cat.ID))

	resp, err := p.PlayCard(context.Background(), cat.ID, "")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Card is already being played", resp.Error)
	assert.Zero(t, atomic.LoadInt64(&s.plays), "二重送信はサーバーに届かない")
}

func TestPlayCardOptimisticUpdateThenReconcile(t *testing.T) {
	cat, _ := game.GetCardByID("phonics-1")
	bed, _ := game.GetCardByID("phonics-10")

	// サーバー側の正式な状態: cat をプレイ済みで手札は bed のみ
	s := newSnapshotServer(t, playingSnapshot("2026-08-31T10:00:05.000000000Z", []models.Card{bed}))
	p := s.newPoller()

	// ローカルはまだプレイ前の状態を保持している
	local := playingSnapshot("2026-08-31T10:00:00.000000000Z", []models.Card{cat, bed})
	p.gameState = local.Game
	p.isPlayer = true
	p.lastUpdatedAt = local.UpdatedAt

	resp, err := p.PlayCard(context.Background(), cat.ID, "")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), atomic.LoadInt64(&s.plays))

	// 楽観的更新の後、再取得で正式な状態に一致している
	state := p.Game()
	require.NotNil(t, state)
	require.NotNil(t, state.CurrentPlayer)
	require.Len(t, state.CurrentPlayer.Hand, 1)
	assert.Equal(t, bed.ID, state.CurrentPlayer.Hand[0].ID)
	assert.False(t, p.IsCardPending(cat.ID), "完了後はペンディングが解除される")
}

func TestPlayCardRejectedRestoresHand(t *testing.T) {
	cat, _ := game.GetCardByID("phonics-1")
	bed, _ := game.GetCardByID("phonics-10")

	// プレイは拒否される。サーバー側の状態（updatedAt含む）は一切変わらない。
	const updatedAt = "2026-08-31T10:00:00.000000000Z"
	s := newSnapshotServer(t, playingSnapshot(updatedAt, []models.Card{cat, bed}))
	atomic.StoreInt64(&s.rejectPlay, 1)
	p := s.newPoller()

	// ローカルはサーバーと同期済みの状態から始める
	local := playingSnapshot(updatedAt, []models.Card{cat, bed})
	p.gameState = local.Game
	p.isPlayer = true
	p.lastUpdatedAt = updatedAt

	resp, err := p.PlayCard(context.Background(), cat.ID, "")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Not your turn", resp.Error)

	// updatedAt が変わっていなくても、楽観的に消したカードは再取得で戻る
	state := p.Game()
	require.NotNil(t, state)
	require.NotNil(t, state.CurrentPlayer)
	require.Len(t, state.CurrentPlayer.Hand, 2)
	assert.Equal(t, cat.ID, state.CurrentPlayer.Hand[0].ID)
	assert.False(t, p.IsCardPending(cat.ID))
}
