// Package ai holds what every AI backend shares: the prompts sent to the
// models and the error values callers dispatch on.
package ai

import "strings"

// ImageThemeRunes is how much of the transcript seeds the illustration prompt.
const ImageThemeRunes = 50

const imagePromptPrefix = "Generate a detailed illustration or photograph relevant to the theme: "

const articlePromptTemplate = `You are an expert writer for a popular magazine. Take the following transcript
and turn it into a well-structured, engaging magazine-style article.

Use proper HTML formatting with these elements:
- Wrap the title in <h1> tags
- Use <h2> for section headings
- Use <p> tags for paragraphs
- Use <blockquote> for important quotes
- Break up the text into shorter paragraphs for readability

Ignore the podcast's title and host.
Ignore advertisements for products or services.

Transcript: `

// ArticlePrompt builds the editor instruction for rewriting a transcript.
func ArticlePrompt(transcript string) string {
	var b strings.Builder
	b.Grow(len(articlePromptTemplate) + len(transcript))
	b.WriteString(articlePromptTemplate)
	b.WriteString(transcript)
	return b.String()
}

// ImagePrompt builds the illustration prompt from the first ImageThemeRunes
// characters of the transcript.
func ImagePrompt(transcript string) string {
	return imagePromptPrefix + truncateRunes(transcript, ImageThemeRunes)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
