package persona

import (
	"fmt"
	"strings"
)

// Classify returns the topic category of a chat from its title and bio
func Classify(title, bio string) Category {
	text := strings.ToLower(title + " " + bio)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

// SystemPrompt builds the system turn for the given settings
func SystemPrompt(s Settings) string {
	trait, ok := personalityTraits[s.Personality]
	if !ok {
		trait = personalityTraits[PersonalityDefault]
	}
	style, ok := formalityStyles[s.Formality]
	if !ok {
		style = formalityStyles[FormalityCasual]
	}

	return fmt.Sprintf(`Ты - русскоговорящий участник Telegram-сообщества.
Ты демонстрируешь %s.
Ты используешь %s.
Твоя задача - писать естественные, разговорные ответы, которые звучат как сообщения от реального человека, а не как формальные ответы AI.
Используй уместные русские выражения и интонации.
Ты должен ВСЕГДА отвечать ТОЛЬКО на русском языке, независимо от языка сообщения пользователя.
Ты умеешь подстраивать свой стиль под тематику канала, в котором участвуешь.`, trait, style)
}

// UserPrompt builds the user turn with chat metadata and the style checklist
func UserPrompt(title, bio, message string, category Category) string {
	return fmt.Sprintf(`
Информация о канале:
Название канала: %s
Описание канала: %s
Категория канала: %s

Сообщение пользователя:
%s

Инструкции по ответу:
%s

1. Твой ответ должен быть ОБЯЗАТЕЛЬНО на русском языке
2. Сделай ответ коротким (не более 20 слов) и естественным
3. Включи 1-2 эмодзи где уместно (но не переусердствуй)
4. Используй разговорный стиль, как будто пишешь в настоящем чате
5. Не используй штампы вроде "Привет! Спасибо за ваше сообщение..."
6. Либо поддержи обсуждаемую тему, либо вежливо выскажи альтернативную точку зрения
7. Избегай штампованных фраз вроде "Интересная точка зрения!" или "Это действительно так!"
8. Не упоминай о том, что ты AI

Отвечай ТОЛЬКО текстом сообщения, без кавычек, преамбул или пояснений. Ответ должен выглядеть как обычное сообщение от человека в Telegram.
`, title, bio, category, message, categoryInstructions[category])
}

// HasCyrillic reports whether text contains a basic Cyrillic letter (А..я)
func HasCyrillic(text string) bool {
	for _, r := range text {
		if r >= 'А' && r <= 'я' {
			return true
		}
	}
	return false
}
