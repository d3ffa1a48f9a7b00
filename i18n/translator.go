package i18n

import "sync"

// Translator retrieves localized messages for issue codes. data provides
// optional metadata to embed in the message (for example "expected" or
// "received").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須プロパティが不足しています"
		case "unknown_key":
			return "未知のキーです"
		case "too_small":
			return "小さすぎます"
		case "too_big":
			return "大きすぎます"
		case "too_short":
			return "短すぎます"
		case "too_long":
			return "長すぎます"
		case "pattern":
			return "パターンに一致しません"
		case "invalid_enum":
			return "許可されていない値です"
		case "invalid_literal":
			return "リテラル値が一致しません"
		case "invalid_date":
			return "日付が不正です"
		case "not_a_number":
			return "NaN は許可されていません"
		case "never":
			return "値は許可されていません"
		case "discriminator_missing":
			return "判別キーが不足しています"
		case "discriminator_unknown":
			return "未知の判別値です"
		case "union_no_match":
			return "どの候補にも一致しません"
		case "intersection_member":
			return "交差型のメンバー検証に失敗しました"
		case "unresolved_ref":
			return "未解決の参照です"
		case "transform_failed":
			return "変換に失敗しました"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required property missing"
		case "unknown_key":
			return "unknown key"
		case "too_small":
			return "too small"
		case "too_big":
			return "too big"
		case "too_short":
			return "too short"
		case "too_long":
			return "too long"
		case "pattern":
			return "value does not match pattern"
		case "invalid_enum":
			return "value not in allowed set"
		case "invalid_literal":
			return "literal value mismatch"
		case "invalid_date":
			return "invalid date"
		case "not_a_number":
			return "NaN is not allowed"
		case "never":
			return "no value is allowed"
		case "discriminator_missing":
			return "discriminator property missing"
		case "discriminator_unknown":
			return "unknown discriminator value"
		case "union_no_match":
			return "no union member matched"
		case "intersection_member":
			return "intersection member failed"
		case "unresolved_ref":
			return "unresolved schema reference"
		case "transform_failed":
			return "transformation failed"
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). Passing nil restores the built-in English dictionary.
func SetTranslator(tr Translator) {
	mu.Lock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
	} else {
		currentTranslator = tr
	}
	mu.Unlock()
}

// T resolves a message for the given code with the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
