package validate

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// IndexedFiles extracts every anchor href from a directory-listing page,
// discarding hrefs that are absolute (start with "/"), carry a scheme or
// host, or are one of the navigational entries "." / ".." / "../".
func IndexedFiles(body io.Reader) ([]string, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	var files []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if f, ok := acceptHref(attr.Val); ok {
					files = append(files, f)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return files, nil
}

func acceptHref(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	switch u.Path {
	case "", ".", "..":
		return "", false
	}
	if u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "../") {
		return "", false
	}

	return u.Path, true
}
