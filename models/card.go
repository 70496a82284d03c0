package models

// CardType はカードの種別（フォニックスカードかアクションカードか）を表します。
type CardType string

const (
	CardTypePhonics CardType = "phonics"
	CardTypeAction  CardType = "action"
)

// ActionType はアクションカードの効果種別です。
type ActionType string

const (
	ActionChange    ActionType = "change"      // スート変更
	ActionMissATurn ActionType = "miss-a-turn" // 一回休み
	ActionReverse   ActionType = "reverse"     // 順番逆転
)

// Card はデッキ内の1枚のカードを表すタグ付き共用体です。
// Type が phonics の場合は Word/Suit/Graphemes、action の場合は Action のみ有効。
// カードは生成後に変更されず、山札・場札・手札の間を移動するだけです。
type Card struct {
	ID        string     `json:"id"`
	Type      CardType   `json:"type"`
	Word      string     `json:"word,omitempty"`      // CVC単語（例: "cat", "map", "sit"）
	Suit      string     `json:"suit,omitempty"`      // 母音スート（a, e, i, o, u）
	Graphemes []string   `json:"graphemes,omitempty"` // 書記素分解（例: ["c", "a", "t"]）
	Action    ActionType `json:"action,omitempty"`
}

// IsPhonics はフォニックスカードかどうかを返します。
func (c Card) IsPhonics() bool {
	return c.Type == CardTypePhonics
}

// IsAction はアクションカードかどうかを返します。
func (c Card) IsAction() bool {
	return c.Type == CardTypeAction
}

// デッキ構成（合計50枚）
const (
	PhonicsCardCount = 42
	ChangeCardCount  = 3
	MissATurnCount   = 3
	ReverseCardCount = 2
	TotalCardCount   = 50
)

// PhonicsSuits は Change カードで宣言できる母音スートの一覧です。
var PhonicsSuits = []string{"a", "e", "i", "o", "u"}

// IsValidSuit は宣言されたスートが有効な母音スートかどうかを返します。
func IsValidSuit(suit string) bool {
	for _, s := range PhonicsSuits {
		if s == suit {
			return true
		}
	}
	return false
}
