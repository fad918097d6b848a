package github

// codeSearchPage is one page of GET /search/code
type codeSearchPage struct {
	TotalCount        uint64 `json:"total_count"`
	IncompleteResults bool   `json:"incomplete_results"`
	Items             []struct {
		Path       string `json:"path"`
		Repository Repo   `json:"repository"`
	} `json:"items"`
}

// Repo is the part of a repository document we use
type Repo struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Fork     bool   `json:"fork"`
}

type release struct {
	Name       string  `json:"name"`
	TagName    string  `json:"tag_name"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	Assets     []asset `json:"assets"`
}

type asset struct {
	Name          string `json:"name"`
	DownloadCount uint64 `json:"download_count"`
}
