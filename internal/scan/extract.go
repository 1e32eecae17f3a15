package scan

import (
	"fmt"
	nurl "net/url"
	"strings"
	"unicode"
	"updatescan/internal/models"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// minArticleLength is the shortest readability TextContent accepted before
// falling back to whole-page text.
const minArticleLength = 50

// Extract reduces a fetched HTML document to the text that gets compared
// between scans.
func Extract(rawHTML, pageURL string, mode models.ContentMode, ignoreNumbers bool) (string, error) {
	var text string
	if mode == models.ContentArticle {
		if article, ok := articleText(rawHTML, pageURL); ok {
			text = article
		}
	}
	if text == "" {
		var err error
		text, err = documentText(rawHTML)
		if err != nil {
			return "", err
		}
	}

	if ignoreNumbers {
		text = stripNumbers(text)
	}
	return collapseWhitespace(text), nil
}

func documentText(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), nil
	}
	return body.Text(), nil
}

func articleText(rawHTML, pageURL string) (string, bool) {
	parsedURL, err := nurl.Parse(pageURL)
	if err != nil {
		return "", false
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		return "", false
	}
	if len(strings.TrimSpace(article.TextContent)) < minArticleLength {
		return "", false
	}
	return article.TextContent, true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripNumbers(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
}
