package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/net/html"
)

// Verify parses a rendered page and checks the pieces the map needs at
// runtime: the map container, the filter sidebar and an embedded payload
// carrying every expected group.
func Verify(page []byte, groups []string) error {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return fmt.Errorf("rendered page does not parse (%v)", err)
	}

	ids := map[string]*html.Node{}
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := attr(n, "id"); id != "" {
				ids[id] = n
			}
		}
	})

	for _, id := range []string{"map", "filter-sidebar", "payload"} {
		if _, ok := ids[id]; !ok {
			return fmt.Errorf("rendered page is missing element '#%s'", id)
		}
	}

	embedded := text(ids["payload"])

	payload := Payload{}
	if err := json.Unmarshal([]byte(embedded), &payload); err != nil {
		return fmt.Errorf("embedded payload does not parse (%v)", err)
	}

	names := map[string]bool{}
	for _, g := range payload.Groups {
		names[g.Name] = true
	}

	for _, group := range groups {
		if !names[group] {
			return fmt.Errorf("rendered page is missing group '%s'", group)
		}
	}

	return nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

func text(n *html.Node) string {
	var b bytes.Buffer

	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})

	return b.String()
}
