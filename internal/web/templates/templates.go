// Package templates holds the server-rendered HTML components. They are
// plain templ components so handlers render them the same way whether the
// caller is a full page load or an HTMX swap.
package templates

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/JonMunkholm/csvinsight/internal/history"
	"github.com/JonMunkholm/csvinsight/internal/storage"
	"github.com/a-h/templ"
)

// FileBrowserParams feeds the index page.
type FileBrowserParams struct {
	Tree        []storage.Node
	MaxFileSize int64
	History     []history.Entry
}

// htmlWriter accumulates the first write error so components can emit
// markup without checking every call.
type htmlWriter struct {
	w   *bufio.Writer
	err error
}

func newHTMLWriter(w io.Writer) *htmlWriter {
	return &htmlWriter{w: bufio.NewWriter(w)}
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = h.w.WriteString(s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) done() error {
	if h.err != nil {
		return h.err
	}
	return h.w.Flush()
}

// ErrorAlert renders the error fragment swapped in by HTMX requests.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div class="alert alert-error" role="alert"><p class="alert-message">`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p class="alert-action">`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<p class="alert-code">Code: `)
			h.text(code)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
		return h.done()
	})
}

// FileTree renders the data directory as nested lists. Files link to the
// load endpoint; folders expand in place.
func FileTree(nodes []storage.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div id="file-tree">`)
		if len(nodes) == 0 {
			h.raw(`<p class="empty">No files yet. Upload a CSV to get started.</p>`)
		} else {
			writeNodes(h, nodes)
		}
		h.raw(`</div>`)
		return h.done()
	})
}

func writeNodes(h *htmlWriter, nodes []storage.Node) {
	h.raw(`<ul class="tree">`)
	for _, n := range nodes {
		if n.Type == storage.NodeFolder {
			h.raw(`<li class="folder"><details><summary>`)
			h.text(n.Name)
			h.raw(`</summary>`)
			if len(n.Children) > 0 {
				writeNodes(h, n.Children)
			}
			h.raw(`</details></li>`)
			continue
		}
		h.raw(`<li class="file"><a href="#" data-path="`)
		h.text(n.Path)
		h.raw(`" hx-get="/api/csv?path=`)
		h.text(url.QueryEscape(n.Path))
		h.raw(`" hx-target="#view">`)
		h.text(n.Name)
		h.raw(`</a> <span class="size">`)
		h.text(humanSize(n.Size))
		h.raw(`</span></li>`)
	}
	h.raw(`</ul>`)
}

// HistoryTable renders recent history entries, newest first.
func HistoryTable(entries []history.Entry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<table id="history" class="history"><thead><tr>`)
		h.raw(`<th>When</th><th>Action</th><th>Path</th><th>Rows</th><th>Duration</th>`)
		h.raw(`</tr></thead><tbody>`)
		for _, e := range entries {
			h.rawf(`<tr class="severity-%s"><td>`, e.Severity)
			h.text(e.CreatedAt.Format("2006-01-02 15:04:05"))
			h.raw(`</td><td>`)
			h.text(string(e.Action))
			h.raw(`</td><td>`)
			h.text(e.Path)
			if e.NewPath != "" {
				h.raw(` &rarr; `)
				h.text(e.NewPath)
			}
			h.raw(`</td><td>`)
			if e.Action == history.ActionLoad {
				h.rawf("%d", e.Rows)
			}
			h.raw(`</td><td>`)
			if e.DurationMS > 0 {
				h.rawf("%d ms", e.DurationMS)
			}
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.done()
	})
}

// FileBrowser renders the full index page.
func FileBrowser(p FileBrowserParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>CSV Insight</title></head><body>`)
		h.raw(`<header><h1>CSV Insight</h1></header><main><aside>`)
		if err := h.done(); err != nil {
			return err
		}

		if err := FileTree(p.Tree).Render(ctx, w); err != nil {
			return err
		}

		h.raw(`<form id="upload" hx-post="/api/csv/upload" hx-encoding="multipart/form-data" hx-target="#file-tree">`)
		h.raw(`<input type="text" name="path" placeholder="folder (optional)">`)
		h.raw(`<input type="file" name="file" accept=".csv,.tsv,.txt" required>`)
		h.rawf(`<button type="submit">Upload</button><small>Max %s</small></form>`,
			templ.EscapeString(humanSize(p.MaxFileSize)))
		h.raw(`</aside><section id="view"><p class="empty">Pick a file to explore it.</p></section>`)
		if err := h.done(); err != nil {
			return err
		}

		if len(p.History) > 0 {
			h.raw(`<section><h2>Recent activity</h2>`)
			if err := h.done(); err != nil {
				return err
			}
			if err := HistoryTable(p.History).Render(ctx, w); err != nil {
				return err
			}
			h.raw(`</section>`)
		}

		h.raw(`</main></body></html>`)
		return h.done()
	})
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/float64(div)), ".0") + " " + string("KMGTPE"[exp]) + "B"
}
