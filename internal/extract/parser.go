package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/pagereaper/pagereaper/internal/config"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parser turns a rendered HTML snapshot into extraction records using the
// configured selector profile. The orchestrator treats it as a black box:
// zero or more records, or an error.
type Parser struct {
	profile config.ExtractorConfig
	now     func() time.Time
}

func NewParser(profile config.ExtractorConfig) *Parser {
	return &Parser{profile: profile, now: time.Now}
}

// NewParserAt pins the reference time used for relative-date normalization.
func NewParserAt(profile config.ExtractorConfig, now func() time.Time) *Parser {
	return &Parser{profile: profile, now: now}
}

// Parse extracts all post records from pageHTML. A page carrying the
// configured not-found marker yields exactly the one-row sentinel result.
func (p *Parser) Parse(pageHTML, originURL string) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	if p.profile.NotFoundSelector != "" && doc.Find(p.profile.NotFoundSelector).Length() > 0 {
		return []Record{SentinelRecord(originURL)}, nil
	}

	pageName := strings.TrimSpace(doc.Find(p.profile.PageNameSelector).First().Text())
	now := p.now()

	var records []Record
	doc.Find(p.profile.PostSelector).Each(func(_ int, post *goquery.Selection) {
		content := flattenText(post.Find(p.profile.ContentSelector))
		date := strings.TrimSpace(post.Find(p.profile.DateSelector).First().Text())
		likes := strings.TrimSpace(post.Find(p.profile.LikesSelector).First().Text())
		comments := strings.TrimSpace(post.Find(p.profile.CommentsSelector).First().Text())

		if content == "" && date == "" && likes == "" && comments == "" {
			return
		}

		records = append(records, Record{
			PageURL:  originURL,
			PageName: pageName,
			Content:  content,
			PostDate: NormalizeTimestamp(date, now),
			Likes:    likes,
			Comments: comments,
		})
	})

	return records, nil
}

// flattenText renders a selection's text content, turning <br> and block
// boundaries into newlines so multi-line posts survive the round trip into
// a single CSV field.
func flattenText(sel *goquery.Selection) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "br":
				b.WriteString("\n")
				return
			case "p", "div":
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteString("\n")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}

	return strings.TrimSpace(b.String())
}
