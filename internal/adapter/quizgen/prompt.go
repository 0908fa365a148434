package quizgen

import (
	"strings"
	"unicode/utf8"
)

// truncationMarker is appended when article text exceeds the context ceiling.
const truncationMarker = "\n\n[Article truncated for processing...]"

// quizGenerationTemplate produces the full quiz payload: summary, key
// entities, sections, questions and related topics. Rendered by plain
// variable substitution so the output is fully deterministic.
const quizGenerationTemplate = `You are an expert quiz generator specializing in educational content.
Your task is to generate a high-quality quiz based on the provided Wikipedia article.

ARTICLE INFORMATION:
-------------------
URL: {url}
Title: {title}

ARTICLE CONTENT:
----------------
{article_text}

TASK:
-----
Generate exactly {count} multiple-choice questions based ONLY on the information provided in the article above.

REQUIREMENTS:
1. Each question must be directly answerable from the article content
2. Questions should cover different sections/topics from the article
3. Difficulty distribution: approximately 30% easy, 50% medium, 20% hard
4. Each question must have exactly 4 options (A-D)
5. Only ONE option should be correct
6. Wrong options should be plausible but clearly incorrect based on the article
7. Explanations should reference specific parts of the article

OUTPUT FORMAT (strict JSON):
{
    "url": "{url}",
    "title": "{title}",
    "summary": "A 2-3 sentence summary of the article's main topic",
    "key_entities": {
        "people": ["List of important people mentioned"],
        "organizations": ["List of organizations mentioned"],
        "locations": ["List of locations mentioned"]
    },
    "sections": ["List of main section headings from the article"],
    "quiz": [
        {
            "question": "Clear, specific question text",
            "options": ["Option A", "Option B", "Option C", "Option D"],
            "answer": "The correct option (must match one of the options exactly)",
            "difficulty": "easy|medium|hard",
            "explanation": "Brief explanation referencing the article section"
        }
    ],
    "related_topics": ["5-8 related Wikipedia topics for further reading"]
}

CRITICAL RULES:
- Output ONLY valid JSON, no markdown code blocks
- Do NOT hallucinate or add information not in the article
- Questions must be educational and factually accurate
- Each answer must be verifiable from the article text
`

// supplementaryTemplate asks for additional unique questions only, omitting
// the full metadata that the initial response already provided.
const supplementaryTemplate = `You are an expert quiz generator.
Generate {remaining} MORE unique questions from this article.

ARTICLE:
URL: {url}
Title: {title}

CONTENT:
{article_text}

PREVIOUSLY GENERATED QUESTIONS (do NOT repeat these):
{previous_questions}

Generate {remaining} NEW questions that:
1. Cover different aspects of the article
2. Do NOT duplicate any previous questions
3. Follow the same format as before

OUTPUT FORMAT (strict JSON):
{
    "quiz": [
        {
            "question": "New question text",
            "options": ["A", "B", "C", "D"],
            "answer": "Correct answer",
            "difficulty": "easy|medium|hard",
            "explanation": "Brief explanation"
        }
    ]
}

Output ONLY valid JSON, no markdown.
`

// renderPrompt substitutes {name} placeholders in a template. Substitution
// happens in a single pass so variable values containing placeholder-like
// text are never re-expanded.
func renderPrompt(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// truncateArticleText caps article text at maxChars, appending the
// truncation marker when content was dropped. The cut backs off to a rune
// boundary so a multi-byte character is never split.
func truncateArticleText(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + truncationMarker
}
