// Package menu fetches and parses the institutional cafeteria menu page.
//
// The source is an HTML document whose body carries one calendar table per
// month. Each relevant cell starts with a day-of-month number; the rest of
// the cell is the menu description with <br> line breaks. The parser depends
// only on that shape, not on the surrounding page chrome.
package menu

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// DayMenu is one parsed calendar cell: a day of month and its menu text.
// Text is empty for days listed without a menu (weekends, holidays).
type DayMenu struct {
	Day  int
	Text string
}

// ErrNoCalendar is returned when the document has no recognizable calendar
// table body.
var ErrNoCalendar = errors.New("menu: no calendar table in document")

// Parse extracts (day, text) pairs from the month page. Cells whose first
// text node is not a number are skipped; within a cell, the day number and
// the node right after it are dropped, <br> becomes a newline, and any other
// markup is flattened to its text content.
func Parse(r io.Reader) ([]DayMenu, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	// Page chrome regularly contributes tables of its own, so every table
	// body is scanned; cells that do not look like day cells fall out in
	// parseCell.
	var out []DayMenu
	found := false
	walkElements(doc, "tbody", func(tbody *html.Node) {
		found = true
		walkElements(tbody, "td", func(td *html.Node) {
			if cell := firstElementChild(td); cell != nil {
				if dm, ok := parseCell(cell); ok {
					out = append(out, dm)
					return
				}
			}
			if dm, ok := parseCell(td); ok {
				out = append(out, dm)
			}
		})
	})
	if !found {
		return nil, ErrNoCalendar
	}
	return out, nil
}

// parseCell reads one calendar cell: child 0 is the day number, child 1 is
// separator markup, children 2+ are the menu lines.
func parseCell(cell *html.Node) (DayMenu, bool) {
	var kids []*html.Node
	for c := cell.FirstChild; c != nil; c = c.NextSibling {
		kids = append(kids, c)
	}
	if len(kids) == 0 {
		return DayMenu{}, false
	}

	day, err := strconv.Atoi(strings.TrimSpace(nodeText(kids[0])))
	if err != nil {
		return DayMenu{}, false
	}

	var b strings.Builder
	for i := 2; i < len(kids); i++ {
		n := kids[i]
		if n.Type == html.ElementNode && n.Data == "br" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(nodeText(n))
	}
	return DayMenu{Day: day, Text: strings.TrimSpace(b.String())}, true
}

// walkElements invokes fn on every descendant element named tag.
func walkElements(n *html.Node, tag string, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			fn(c)
			continue
		}
		walkElements(c, tag, fn)
	}
}

// firstElementChild returns the first child of element type, or nil.
func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// nodeText flattens a node to its concatenated text content.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
