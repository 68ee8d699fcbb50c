package recipon

import (
	"strings"

	"github.com/Shugo117/recipon/models"
)

// categoryRule maps a keyword set to a category label. Rules are evaluated
// in declared order and the first rule with any substring match wins, so an
// earlier rule shadows later ones even when both match. The order below is
// load-bearing.
type categoryRule struct {
	keywords []string
	label    string
}

var categoryRules = []categoryRule{
	{keywords: []string{"パスタ", "スパゲ", "カルボナーラ", "ボロネーゼ", "ペペロン"}, label: "パスタ"},
	{keywords: []string{"うどん", "そば", "ラーメン", "そうめん", "焼きそば", "麺"}, label: "麺"},
	{keywords: []string{"丼", "チャーハン", "炊き込み", "おにぎり", "カレー", "リゾット"}, label: "ごはん・丼"},
	{keywords: []string{"パン", "トースト", "サンド", "ホットサンド"}, label: "パン"},
	{keywords: []string{"ケーキ", "プリン", "パフェ", "タルト", "アイス", "ブラウニー", "クレープ"}, label: "スイーツ"},
	{keywords: []string{"クッキー", "ドーナツ", "マフィン", "スコーン", "おやつ"}, label: "おやつ"},
	{keywords: []string{"スープ", "味噌汁", "みそ汁", "ポタージュ", "シチュー"}, label: "スープ"},
	{keywords: []string{"鍋", "しゃぶ", "すき焼", "キムチ鍋", "もつ鍋"}, label: "鍋"},
	{keywords: []string{"サラダ"}, label: "サラダ"},
	{keywords: []string{"弁当", "お弁当"}, label: "お弁当"},
	{keywords: []string{"作り置き", "つくりおき", "常備菜"}, label: "作り置き"},
	{keywords: []string{"朝", "モーニング", "朝ごはん"}, label: "朝ごはん"},
	{keywords: []string{"つまみ", "おつまみ"}, label: "おつまみ"},
	{keywords: []string{"鶏", "豚", "牛", "ひき肉", "から揚げ", "唐揚げ", "ハンバーグ", "生姜焼"}, label: "お肉"},
	{keywords: []string{"鮭", "さけ", "サーモン", "鯖", "さば", "ぶり", "鯛", "あじ", "いわし"}, label: "お魚"},
	{keywords: []string{"卵", "たまご", "豆腐", "納豆", "大豆", "厚揚げ"}, label: "卵・豆"},
}

// ClassifyTitle guesses a category from free text. Total function: it
// always returns a member of the fixed category set, falling back to
// models.DefaultCategory when nothing matches. Input is lower-cased first so
// any future Latin keywords match case-insensitively.
func ClassifyTitle(text string) string {
	t := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.label
			}
		}
	}
	return models.DefaultCategory
}
