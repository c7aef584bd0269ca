package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// TextNodes returns every descendant text node's content in document order,
// each one trimmed, empty ones dropped.
func TextNodes(node *html.Node) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				out = append(out, text)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return out
}

// StrippedText joins the trimmed text nodes of every node in the selection
// without a separator.
func StrippedText(sel *goquery.Selection) string {
	var out strings.Builder
	for _, n := range sel.Nodes {
		for _, text := range TextNodes(n) {
			out.WriteString(text)
		}
	}
	return out.String()
}

// FirstLine is the first line of the first non-empty text node in the
// selection.
func FirstLine(sel *goquery.Selection) string {
	for _, n := range sel.Nodes {
		texts := TextNodes(n)
		if len(texts) == 0 {
			continue
		}
		line, _, _ := strings.Cut(texts[0], "\n")
		return strings.TrimSpace(line)
	}
	return ""
}

// TextAfterBreak returns the trimmed text that follows the first <br> child
// of node, up to the next <br> or the end of node.
func TextAfterBreak(node *html.Node) (string, bool) {
	var br *html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "br" {
			br = child
			break
		}
	}
	if br == nil {
		return "", false
	}

	var buffer bytes.Buffer
	for sib := br.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode && sib.Data == "br" {
			break
		}
		getTextRecursive(sib, &buffer)
	}
	return strings.TrimSpace(buffer.String()), true
}
