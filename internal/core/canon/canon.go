// Package canon turns repository URLs from search results, seeds files and
// stored documents into one canonical spelling
//
// URL keeps path case so clones hit the same remote, Key folds everything so
// two spellings of the same repository collide
package canon

import (
	"net/url"
	"path"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	cleanPool = sync.Pool{New: func() any {
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.Cf)), // zero width and BOM
			runes.Remove(runes.In(unicode.Cc)),
			width.Fold,
		)
	}}
	foldPool = sync.Pool{New: func() any { return cases.Fold() }}
)

func run(p *sync.Pool, s string) string {
	tr := p.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	p.Put(tr)
	if err != nil {
		return s
	}
	return out
}

// URL returns https://host/owner/repo for anything that looks like a
// repository reference. Inputs that do not parse come back trimmed
func URL(raw string) string {
	s := strings.TrimSpace(run(&cleanPool, strings.ToValidUTF8(raw, "")))
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "git@") {
		// git@host:owner/repo.git
		s = "https://" + strings.Replace(strings.TrimPrefix(s, "git@"), ":", "/", 1)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	host := strings.ToLower(u.Hostname())
	p := path.Clean("/" + u.Path)
	p = strings.TrimSuffix(strings.TrimRight(p, "/"), ".git")
	if p == "" || p == "/" {
		return "https://" + host
	}
	return "https://" + host + p
}

// Key returns the folded identity used to detect duplicates
func Key(raw string) string {
	return run(&foldPool, URL(raw))
}

// PathOf returns host/owner/repo for a URL, safe to join under a scratch dir
func PathOf(raw string) string {
	c := strings.TrimPrefix(URL(raw), "https://")
	parts := strings.Split(c, "/")
	out := parts[:0]
	for _, s := range parts {
		if s == "" || s == "." || s == ".." {
			continue
		}
		out = append(out, s)
	}
	return strings.Join(out, "/")
}

// OwnerRepo splits a canonical github style URL into owner and repo
func OwnerRepo(raw string) (owner, repo string, ok bool) {
	parts := strings.Split(PathOf(raw), "/")
	if len(parts) < 3 {
		return "", "", false
	}
	return parts[1], parts[2], true
}
