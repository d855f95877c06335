package persona

// Personality names
const (
	PersonalityDefault     = "default"
	PersonalityFriendly    = "friendly"
	PersonalityWitty       = "witty"
	PersonalityExpert      = "expert"
	PersonalityProvocative = "provocative"
)

// Formality names
const (
	FormalityCasual  = "casual"
	FormalityNeutral = "neutral"
	FormalityFormal  = "formal"
)

// Category is the topic of a chat
type Category string

const (
	CategoryGeneral       Category = "общий"
	CategoryTechnology    Category = "технологии"
	CategoryPolitics      Category = "политика"
	CategoryEntertainment Category = "развлечения"
)

var personalityTraits = map[string]string{
	PersonalityDefault:     "сбалансированную личность с умеренной эмоциональностью",
	PersonalityFriendly:    "дружелюбную, отзывчивую личность, которая всегда поддерживает собеседника",
	PersonalityWitty:       "остроумную личность с лёгким сарказмом и юмором",
	PersonalityExpert:      "компетентную личность, демонстрирующую глубокие знания в обсуждаемой теме",
	PersonalityProvocative: "личность, которая вежливо ставит под сомнение утверждения и провоцирует дискуссию",
}

var formalityStyles = map[string]string{
	FormalityCasual:  "неформальный разговорный стиль с использованием сленга и простых конструкций",
	FormalityNeutral: "повседневный нейтральный стиль, подходящий для большинства ситуаций",
	FormalityFormal:  "более формальный стиль с правильными речевыми конструкциями и минимумом сленга",
}

// categoryRules are checked in order, first hit wins.
// Keywords are matched against lowercased title and bio.
var categoryRules = []struct {
	category Category
	keywords []string
}{
	{CategoryTechnology, []string{
		"программирование", "python", "код", "разработк", "технолог", "компьютер",
		"software", "hardware", "programming", "developer", "technology",
	}},
	{CategoryPolitics, []string{
		"политик", "власт", "президент", "правительств", "экономик", "оппозиц", "выбор", "партия", "дума",
		"politic", "election", "government", "president", "parliament", "econom",
	}},
	{CategoryEntertainment, []string{
		"кино", "фильм", "сериал", "музык", "игр", "развлечен", "юмор", "мем", "шутк",
		"movie", "film", "music", "game", "entertainment", "humor", "meme",
	}},
}

var categoryInstructions = map[Category]string{
	CategoryGeneral:       "Используй нейтральный разговорный стиль с умеренной эмоциональностью.",
	CategoryTechnology:    "Используй более точный технический язык с некоторыми профессиональными терминами, но оставаясь понятным. Можешь проявлять умеренный энтузиазм к технологиям.",
	CategoryPolitics:      "Будь сдержанным и рассудительным, избегай крайне радикальных взглядов. Старайся обсуждать события с разных точек зрения.",
	CategoryEntertainment: "Будь более эмоциональным и неформальным, используй современный разговорный русский язык. Можешь использовать больше эмодзи и популярных выражений.",
}

var fallbackPhrases = map[string][]string{
	PersonalityDefault: {
		"Интересная мысль! 🤔",
		"Согласен с тобой! 👍",
		"А что если посмотреть с другой стороны? 🧐",
		"Хороший вопрос! Дай подумать...",
	},
	PersonalityFriendly: {
		"Отличная идея, мне нравится! 😊",
		"Полностью поддерживаю тебя в этом! 👏",
		"Как здорово, что ты это заметил! ✨",
		"Всегда приятно обсудить такие темы! 💬",
	},
	PersonalityWitty: {
		"И как ты до такого додумался? 😏",
		"Ну это смотря с какой стороны посмотреть... 🙃",
		"В этом определённо что-то есть! Или нет? 🤔",
		"А вот и ещё один эксперт подъехал! 😁",
	},
	PersonalityExpert: {
		"С технической точки зрения, тут есть нюансы...",
		"Если проанализировать глубже, можно прийти к иному выводу.",
		"В профессиональной среде это называется иначе.",
		"Интересный тезис, хотя фактически ситуация сложнее.",
	},
	PersonalityProvocative: {
		"А ты уверен, что это так? 🤨",
		"Весьма спорное утверждение, если честно.",
		"А доказательства этому есть? 🧐",
		"Я бы поспорил с этим мнением! 💭",
	},
}

// FallbackPhrases returns the fallback set for a personality
func FallbackPhrases(personality string) []string {
	if phrases, ok := fallbackPhrases[personality]; ok {
		return phrases
	}
	return fallbackPhrases[PersonalityDefault]
}
