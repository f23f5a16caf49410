package happycall

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockedElements are removed with their whole subtree.
var blockedElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Iframe: true,
	atom.Object: true,
	atom.Embed:  true,
	atom.Style:  true,
}

// SanitizeScriptHTML strips active content from admin-edited script HTML.
// Input with nothing to strip is returned unchanged so formatting survives.
func SanitizeScriptHTML(content string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return "", err
	}

	for _, n := range nodes {
		body.AppendChild(n)
	}
	if !cleanNode(body) {
		return content, nil
	}

	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// cleanNode removes blocked descendants and unsafe attributes of n.
// It reports whether anything was removed.
func cleanNode(n *html.Node) bool {
	changed := false
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && blockedElements[c.DataAtom] {
			n.RemoveChild(c)
			changed = true
		} else if cleanNode(c) {
			changed = true
		}
		c = next
	}

	if n.Type != html.ElementNode {
		return changed
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if unsafeAttr(a) {
			changed = true
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
	return changed
}

func unsafeAttr(a html.Attribute) bool {
	key := strings.ToLower(a.Key)
	if strings.HasPrefix(key, "on") {
		return true
	}
	v := strings.ToLower(strings.Join(strings.Fields(a.Val), ""))
	return strings.HasPrefix(v, "javascript:")
}
