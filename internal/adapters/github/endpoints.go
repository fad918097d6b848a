package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"ecotrack/internal/core/ledger"
	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/services/discovery/domain"
)

var _ domain.Searcher = (*Client)(nil)

const (
	perPage = 100
	// code search serves at most 1000 results
	maxSearchPages  = 10
	maxReleasePages = 20
)

// SearchCount returns only the total match count of a code search
func (c *Client) SearchCount(ctx context.Context, query string) (uint64, error) {
	var page codeSearchPage
	if err := c.getJSON(ctx, searchPath(query, 1, 1), &page); err != nil {
		return 0, err
	}
	return page.TotalCount, nil
}

// SearchRepos walks a code search and collects the matching repositories
func (c *Client) SearchRepos(ctx context.Context, query string) (domain.SearchResult, error) {
	var res domain.SearchResult
	seen := map[string]bool{}
	seenItems := 0
	for n := 1; n <= maxSearchPages; n++ {
		var page codeSearchPage
		if err := c.getJSON(ctx, searchPath(query, n, perPage), &page); err != nil {
			return domain.SearchResult{}, err
		}
		res.Total = page.TotalCount
		for _, it := range page.Items {
			u := it.Repository.HTMLURL
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			res.Repos = append(res.Repos, u)
		}
		seenItems += len(page.Items)
		if len(page.Items) < perPage || uint64(seenItems) >= page.TotalCount {
			return res, nil
		}
	}
	res.Truncated = true
	c.log.Warn().Str("query", query).Uint64("total", res.Total).Int("seen", seenItems).Msg("code search truncated")
	return res, nil
}

// ListReleases returns every published release of owner/name, newest first
func (c *Client) ListReleases(ctx context.Context, ownerRepo string) ([]ledger.Release, error) {
	owner, name, ok := strings.Cut(ownerRepo, "/")
	if !ok || owner == "" || name == "" {
		return nil, perr.InvalidArgf("github repo %q is not owner/name", ownerRepo)
	}
	var out []ledger.Release
	for n := 1; n <= maxReleasePages; n++ {
		var page []release
		path := fmt.Sprintf("/repos/%s/%s/releases?per_page=%d&page=%d", url.PathEscape(owner), url.PathEscape(name), perPage, n)
		if err := c.getJSON(ctx, path, &page); err != nil {
			return nil, err
		}
		for _, r := range page {
			if r.Draft {
				continue
			}
			rel := ledger.Release{Name: r.Name, TagName: r.TagName}
			for _, a := range r.Assets {
				rel.Assets = append(rel.Assets, ledger.Asset{Name: a.Name, DownloadCount: a.DownloadCount})
			}
			out = append(out, rel)
		}
		if len(page) < perPage {
			break
		}
	}
	return out, nil
}

func searchPath(query string, page, size int) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("per_page", fmt.Sprint(size))
	q.Set("page", fmt.Sprint(page))
	return "/search/code?" + q.Encode()
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.Do(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("github close body failed")
		}
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "github read %s", path)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeContract, "github decode %s", path)
	}
	return nil
}
