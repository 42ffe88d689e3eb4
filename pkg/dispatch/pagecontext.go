// Package dispatch routes instructions: grammar first, AI planning on a miss.
package dispatch

import (
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/webpilot-dev/webpilot/pkg/browser"
	"github.com/webpilot-dev/webpilot/pkg/planning"
)

// maxContextChars bounds cleaned markup before token trimming; keeps the
// HTML walk itself cheap on very large pages.
const maxContextChars = 40000

// modalSelectors are tried in order when looking for an active overlay that
// should scope the planner's view of the page.
var modalSelectors = []string{
	`[role="dialog"]`,
	`[aria-modal="true"]`,
	`.modal.show`,
	`.modal[style*="display: block"]`,
	`dialog[open]`,
}

// ContextCapturer produces the page snapshot handed to the planner.
type ContextCapturer interface {
	Capture() planning.PageContext
}

// PageCapturer captures context from a live page: the first visible
// modal-like container when one is open, otherwise the document body.
type PageCapturer struct {
	session *browser.Session
	log     *logrus.Entry
}

// NewPageCapturer creates a capturer for the session's page.
func NewPageCapturer(session *browser.Session, log *logrus.Entry) *PageCapturer {
	return &PageCapturer{session: session, log: log}
}

// Capture is best-effort: a planner can work from a partial snapshot, so
// individual read failures are logged and skipped rather than propagated.
func (p *PageCapturer) Capture() planning.PageContext {
	page := p.session.Page
	pageCtx := planning.PageContext{
		URL:            page.URL(),
		ActiveSelector: p.activeSelector(page),
	}

	if title, err := page.Title(); err == nil {
		pageCtx.Title = title
	}

	raw, err := page.Locator(pageCtx.ActiveSelector).InnerHTML()
	if err != nil {
		p.log.Warnf("failed to read active context markup: %v", err)
		return pageCtx
	}

	summary := Summarize(raw)
	pageCtx.HTML = CleanHTML(raw, maxContextChars)
	pageCtx.Buttons = summary.Buttons
	pageCtx.Links = summary.Links
	pageCtx.HasFormCluster = summary.HasFormCluster()
	return pageCtx
}

// activeSelector returns the selector of the first visible modal-like
// container, or "body".
func (p *PageCapturer) activeSelector(page playwright.Page) string {
	for _, selector := range modalSelectors {
		loc := page.Locator(selector)
		count, err := loc.Count()
		if err != nil || count == 0 {
			continue
		}
		if visible, err := loc.First().IsVisible(); err == nil && visible {
			return selector
		}
	}
	return "body"
}

// Summary is the planner-facing digest of a markup fragment.
type Summary struct {
	Buttons    []string
	Links      []string
	InputCount int
}

// HasFormCluster reports whether the fragment holds a form-like cluster of
// three or more inputs.
func (s Summary) HasFormCluster() bool {
	return s.InputCount >= 3
}

// Summarize extracts visible button/link text and counts form inputs from a
// markup fragment. Pure: operates on the string alone.
func Summarize(fragment string) Summary {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return Summary{}
	}

	var s Summary
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "button":
				if text := nodeText(n); text != "" {
					s.Buttons = append(s.Buttons, text)
				}
			case "a":
				if text := nodeText(n); text != "" {
					s.Links = append(s.Links, text)
				}
			case "input":
				switch strings.ToLower(attrValue(n, "type")) {
				case "submit", "button":
					if v := attrValue(n, "value"); v != "" {
						s.Buttons = append(s.Buttons, v)
					}
				case "hidden":
					// not a fillable field
				default:
					s.InputCount++
				}
			case "textarea", "select":
				s.InputCount++
			default:
				if attrValue(n, "role") == "button" {
					if text := nodeText(n); text != "" {
						s.Buttons = append(s.Buttons, text)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return s
}

// noisyTags are dropped entirely from cleaned context markup.
var noisyTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"iframe": true, "svg": true, "embed": true, "object": true,
}

// keptAttrs are the attributes worth keeping for element targeting.
var keptAttrs = map[string]bool{
	"id": true, "class": true, "role": true, "name": true, "type": true,
	"placeholder": true, "value": true, "href": true, "aria-label": true,
	"for": true,
}

// CleanHTML strips noise elements and non-targeting attributes from a markup
// fragment and bounds the output length. The result keeps enough structure
// for a planner to name elements, nothing more.
func CleanHTML(fragment string, maxLen int) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var emit func(*html.Node) bool
	emit = func(n *html.Node) bool {
		if b.Len() >= maxLen {
			return true
		}
		switch n.Type {
		case html.CommentNode:
			return false
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteByte(' ')
			}
			return b.Len() >= maxLen
		case html.ElementNode:
			tag := strings.ToLower(n.Data)
			if noisyTags[tag] {
				return false
			}
			b.WriteByte('<')
			b.WriteString(tag)
			for _, attr := range n.Attr {
				key := strings.ToLower(attr.Key)
				if keptAttrs[key] || strings.HasPrefix(key, "data-") {
					b.WriteByte(' ')
					b.WriteString(key)
					b.WriteString(`="`)
					b.WriteString(html.EscapeString(attr.Val))
					b.WriteByte('"')
				}
			}
			b.WriteByte('>')
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if emit(c) {
					return true
				}
			}
			b.WriteString("</")
			b.WriteString(tag)
			b.WriteByte('>')
			return b.Len() >= maxLen
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if emit(c) {
					return true
				}
			}
			return false
		}
	}
	emit(doc)

	out := b.String()
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}

// nodeText flattens an element's text content, whitespace-normalized.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// attrValue returns the trimmed value of an attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}
