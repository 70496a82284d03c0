package game

import (
	"fmt"

	"github.com/wengjjpaul/DKPhonicsCardGame/models"
)

// デッキ全50枚のカード定義。42枚のフォニックスカード + 8枚のアクションカード。
// プロセス起動時に一度だけ構築される読み取り専用のカタログです。

// 母音スートごとのCVC単語リスト。
// 使用する文字は s, a, t, i, m, n, o, p, b, c, g, h, d, e, f, v, k, l, r, u,
// j, w, z, x, y と二重子音 ff, ll, ss, zz のみ（デコーダブル単語）。
var cvcWords = map[string][]string{
	"a": {"cat", "map", "sat", "hat", "bat", "rat", "can", "pan", "van"},
	"e": {"bed", "pen", "red", "hen", "jet", "wet", "net", "pet", "leg"},
	"i": {"sit", "pig", "win", "big", "hit", "bit", "pin", "fin", "tin"},
	"o": {"hot", "top", "dog", "log", "pot", "cot", "fox", "box", "mop"},
	"u": {"cup", "bus", "run", "sun", "bun", "hut", "cut", "nut", "mud"},
}

// スートごとの採用枚数。合計42枚。
var cardsPerVowel = map[string]int{
	"a": 9,
	"e": 8,
	"i": 9,
	"o": 8,
	"u": 8,
}

// 母音スートの並び順（カードIDを決定的にするため固定）
var vowelOrder = []string{"a", "e", "i", "o", "u"}

var (
	allCards  []models.Card
	cardsByID map[string]models.Card
)

func init() {
	allCards = buildDeck()
	cardsByID = make(map[string]models.Card, len(allCards))
	for _, c := range allCards {
		cardsByID[c.ID] = c
	}
}

// splitIntoGraphemes は単語を書記素に分解します。
// 二重子音（ff, ll, ss, zz）は1つの書記素として扱います。
func splitIntoGraphemes(word string) []string {
	doubles := map[string]bool{"ff": true, "ll": true, "ss": true, "zz": true}
	var graphemes []string
	for i := 0; i < len(word); {
		if i < len(word)-1 && doubles[word[i:i+2]] {
			graphemes = append(graphemes, word[i:i+2])
			i += 2
			continue
		}
		graphemes = append(graphemes, string(word[i]))
		i++
	}
	return graphemes
}

// vowelFromWord はCVC単語から母音スートを取り出します。
func vowelFromWord(word string) string {
	vowels := map[byte]bool{'a': true, 'e': true, 'i': true, 'o': true, 'u': true}
	for i := 0; i < len(word); i++ {
		if vowels[word[i]] {
			return string(word[i])
		}
	}
	return "a" // CVC構造上ここには到達しない
}

func buildDeck() []models.Card {
	cards := make([]models.Card, 0, models.TotalCardCount)

	// フォニックスカード42枚
	idCounter := 1
	for _, vowel := range vowelOrder {
		words := cvcWords[vowel][:cardsPerVowel[vowel]]
		for _, word := range words {
			cards = append(cards, models.Card{
				ID:        fmt.Sprintf("phonics-%d", idCounter),
				Type:      models.CardTypePhonics,
				Word:      word,
				Suit:      vowelFromWord(word),
				Graphemes: splitIntoGraphemes(word),
			})
			idCounter++
		}
	}

	// アクションカード8枚（Change x3, Miss-a-turn x3, Reverse x2）
	for i := 1; i <= models.ChangeCardCount; i++ {
		cards = append(cards, models.Card{
			ID:     fmt.Sprintf("action-change-%d", i),
			Type:   models.CardTypeAction,
			Action: models.ActionChange,
		})
	}
	for i := 1; i <= models.MissATurnCount; i++ {
		cards = append(cards, models.Card{
			ID:     fmt.Sprintf("action-miss-%d", i),
			Type:   models.CardTypeAction,
			Action: models.ActionMissATurn,
		})
	}
	for i := 1; i <= models.ReverseCardCount; i++ {
		cards = append(cards, models.Card{
			ID:     fmt.Sprintf("action-reverse-%d", i),
			Type:   models.CardTypeAction,
			Action: models.ActionReverse,
		})
	}

	return cards
}

// AllCards はデッキ全50枚のコピーを返します。
func AllCards() []models.Card {
	cards := make([]models.Card, len(allCards))
	copy(cards, allCards)
	return cards
}

// GetCardByID はIDからカードを検索します。
func GetCardByID(cardID string) (models.Card, bool) {
	c, ok := cardsByID[cardID]
	return c, ok
}

// CardsBySuit は指定スートのフォニックスカードを返します。
func CardsBySuit(suit string) []models.Card {
	var cards []models.Card
	for _, c := range allCards {
		if c.IsPhonics() && c.Suit == suit {
			cards = append(cards, c)
		}
	}
	return cards
}

// ActionCardsByType は指定効果のアクションカードを返します。
func ActionCardsByType(action models.ActionType) []models.Card {
	var cards []models.Card
	for _, c := range allCards {
		if c.IsAction() && c.Action == action {
			cards = append(cards, c)
		}
	}
	return cards
}
