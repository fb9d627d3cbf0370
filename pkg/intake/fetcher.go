package intake

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// FetchTimeout bounds a narrative download.
const FetchTimeout = 30 * time.Second

// maxFetchBytes caps how much of a remote page is read.
const maxFetchBytes = 5 << 20

// FetchNarrative retrieves a project narrative from a file path or an http(s) URL.
func FetchNarrative(ctx context.Context, input string) (content string, err error) {
	parsedURL, urlErr := url.Parse(input)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		content, err = fetchFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch narrative from URL: %s", input)
			return content, err
		}
		return content, err
	}

	content, err = fetchFromFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch narrative from file: %s", input)
		return content, err
	}

	return content, err
}

func fetchFromFile(path string) (content string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", path)
		return content, err
	}

	content = strings.TrimSpace(string(data))
	if content == "" {
		err = errors.New("file is empty")
		return content, err
	}

	return content, err
}

func fetchFromURL(ctx context.Context, urlStr string) (content string, err error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return content, err
	}

	req.Header.Set("User-Agent", "learning-designer/1.0")

	var resp *http.Response
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return content, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return content, err
	}

	var body []byte
	body, err = io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return content, err
	}

	content = string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "html") || looksLikeHTML(content) {
		content = stripHTML(content)
	}
	content = strings.TrimSpace(content)

	if content == "" {
		err = errors.New("fetched content is empty after processing")
		return content, err
	}

	return content, err
}

func looksLikeHTML(s string) (isHTML bool) {
	head := strings.ToLower(strings.TrimSpace(s))
	isHTML = strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
	return isHTML
}

// stripHTML returns the visible text of an HTML page, one line per block element.
func stripHTML(page string) (text string) {
	tokenizer := html.NewTokenizer(strings.NewReader(page))

	var b strings.Builder
	skip := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			text = collapseBlankLines(b.String())
			return text
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style", "noscript", "head":
				skip++
			case "br", "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style", "noscript", "head":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString("\n")
			}
		case html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "br" {
				b.WriteString("\n")
			}
		case html.TextToken:
			if skip == 0 {
				b.WriteString(normalizeSpace(string(tokenizer.Text())))
			}
		}
	}
}

// normalizeSpace collapses whitespace runs the way a browser does, keeping a
// single space at either edge so adjacent inline elements stay separated.
func normalizeSpace(s string) (out string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			out = " "
		}
		return out
	}

	out = strings.Join(fields, " ")
	if strings.TrimLeftFunc(s, unicode.IsSpace) != s {
		out = " " + out
	}
	if strings.TrimRightFunc(s, unicode.IsSpace) != s {
		out += " "
	}
	return out
}

func collapseBlankLines(s string) (out string) {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	out = strings.Join(kept, "\n")
	return out
}
