package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wengjjpaul/DKPhonicsCardGame/game"
	"github.com/wengjjpaul/DKPhonicsCardGame/models"

	"go.uber.org/zap"
)

// オンラインゲーム用のHTTPクライアント。サーバーの正式な状態をポーリングで取得し、
// 操作をリクエストとして送信します。プッシュチャネルは存在しません。

// Client は1つのゲームに対するAPI呼び出しを担当します。
// クッキー（セッション）を維持するため、cookiejar 付きの http.Client を渡すこと。
type Client struct {
	BaseURL    string
	GameCode   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// GameSnapshot はポーリングのレスポンスです。
type GameSnapshot struct {
	Success   bool                    `json:"success"`
	Game      *models.ClientGameState `json:"game"`
	IsPlayer  bool                    `json:"isPlayer"`
	UpdatedAt string                  `json:"updatedAt"`
	Error     string                  `json:"error"`
}

// ActionResponse は操作系エンドポイントのレスポンスです。
type ActionResponse struct {
	Success bool             `json:"success"`
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Events  []game.GameEvent `json:"events"`
}

func (c *Client) gameURL(suffix string) string {
	return fmt.Sprintf("%s/api/game/%s%s", c.BaseURL, c.GameCode, suffix)
}

// FetchGame は現在のゲーム状態を取得します。
func (c *Client) FetchGame(ctx context.Context) (*GameSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gameURL(""), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var snapshot GameSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if snapshot.Error != "" {
			return nil, fmt.Errorf("fetch game: %s", snapshot.Error)
		}
		return nil, fmt.Errorf("fetch game: status %d", resp.StatusCode)
	}
	return &snapshot, nil
}

func (c *Client) postAction(ctx context.Context, suffix string, body interface{}) (*ActionResponse, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gameURL(suffix), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var action ActionResponse
	if err := json.NewDecoder(resp.Body).Decode(&action); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && action.Error == "" {
		action.Error = fmt.Sprintf("status %d", resp.StatusCode)
	}
	return &action, nil
}

// Join はゲームに参加します。
func (c *Client) Join(ctx context.Context, playerName string) (*ActionResponse, error) {
	return c.postAction(ctx, "/join", models.JoinGameRequest{PlayerName: playerName})
}

// Start はゲームを開始します（ホストのみ）。
func (c *Client) Start(ctx context.Context) (*ActionResponse, error) {
	return c.postAction(ctx, "/start", nil)
}

// Play はカードをプレイします。
func (c *Client) Play(ctx context.Context, cardID, declaredSuit string) (*ActionResponse, error) {
	return c.postAction(ctx, "/play", models.PlayCardRequest{CardID: cardID, DeclaredSuit: declaredSuit})
}

// Draw は山札からカードを引きます。
func (c *Client) Draw(ctx context.Context) (*ActionResponse, error) {
	return c.postAction(ctx, "/draw", nil)
}

// Leave はゲームから離脱します。
func (c *Client) Leave(ctx context.Context) (*ActionResponse, error) {
	return c.postAction(ctx, "/leave", nil)
}

// LeaveAsync は離脱リクエストを投げっぱなしで送信します。
// 画面遷移やプロセス終了をブロックしないための配信保証なしの経路です。
func (c *Client) LeaveAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if _, err := c.Leave(ctx); err != nil && c.Logger != nil {
			c.Logger.Warn("離脱リクエストの送信に失敗しました", zap.Error(err))
		}
	}()
}
