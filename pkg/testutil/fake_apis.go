package testutil

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Artifact is a downloadable file served by the API fakes.
type Artifact struct {
	Name string
	Body []byte
}

// downloads counts file downloads by name.
type downloads struct {
	mu     sync.Mutex
	counts map[string]int
}

func (d *downloads) add(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.counts == nil {
		d.counts = make(map[string]int)
	}
	d.counts[name]++
}

// Downloads returns how often the named file was downloaded.
func (d *downloads) Downloads(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[name]
}

// FakeGitHub serves the release endpoints of the GitHub API.
type FakeGitHub struct {
	*httptest.Server
	downloads

	mu       sync.Mutex
	releases map[string]fakeRelease // "owner/repo@tag", tag "" is latest
	assets   map[int64]Artifact
	nextID   int64
	failing  bool
}

type fakeRelease struct {
	tag    string
	assets []int64
	digest bool
}

// NewFakeGitHub starts a fake closed with the test.
func NewFakeGitHub(t *testing.T) *FakeGitHub {
	t.Helper()
	f := &FakeGitHub{releases: make(map[string]fakeRelease), assets: make(map[int64]Artifact)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// SetRelease publishes the release tag of repository ("owner/repo") and makes
// it the latest one. With digest the assets carry sha256 digests.
func (f *FakeGitHub) SetRelease(repository, tag string, digest bool, artifacts ...Artifact) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rel := fakeRelease{tag: tag, digest: digest}
	for _, a := range artifacts {
		f.nextID++
		f.assets[f.nextID] = a
		rel.assets = append(rel.assets, f.nextID)
	}
	f.releases[repository+"@"+tag] = rel
	f.releases[repository+"@"] = rel
}

// SetFailing makes every request answer 503.
func (f *FakeGitHub) SetFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *FakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "assets":
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		a, ok := f.assets[id]
		if !ok || r.Header.Get("Accept") != "application/octet-stream" {
			http.NotFound(w, r)
			return
		}
		f.add(a.Name)
		_, _ = w.Write(a.Body)

	case len(parts) >= 5 && parts[0] == "repos" && parts[3] == "releases":
		tag := ""
		if len(parts) == 6 && parts[4] == "tags" {
			tag = parts[5]
		}
		rel, ok := f.releases[parts[1]+"/"+parts[2]+"@"+tag]
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, f.releaseJSON(rel))

	default:
		http.NotFound(w, r)
	}
}

func (f *FakeGitHub) releaseJSON(rel fakeRelease) map[string]interface{} {
	assets := make([]map[string]interface{}, 0, len(rel.assets))
	for _, id := range rel.assets {
		a := f.assets[id]
		asset := map[string]interface{}{
			"id":                   id,
			"name":                 a.Name,
			"url":                  fmt.Sprintf("%s/assets/%d", f.URL, id),
			"browser_download_url": fmt.Sprintf("%s/download/%s", f.URL, a.Name),
			"size":                 len(a.Body),
			"updated_at":           time.Date(2024, 1, 1, 0, 0, int(id), 0, time.UTC).Format(time.RFC3339),
		}
		if rel.digest {
			sum := sha256.Sum256(a.Body)
			asset["digest"] = "sha256:" + hex.EncodeToString(sum[:])
		}
		assets = append(assets, asset)
	}
	return map[string]interface{}{"tag_name": rel.tag, "name": rel.tag, "assets": assets}
}

// ModrinthVersion is a project version served by FakeModrinth.
type ModrinthVersion struct {
	ID        string
	Published time.Time
	Files     []ModrinthFile
}

// ModrinthFile is one file of a ModrinthVersion.
type ModrinthFile struct {
	Artifact
	Primary bool
	// NoHash omits the sha512 digest.
	NoHash bool
}

// FakeModrinth serves the project version listing of the Modrinth API.
type FakeModrinth struct {
	*httptest.Server
	downloads

	mu       sync.Mutex
	versions map[string][]ModrinthVersion
	files    map[string]Artifact
	queries  []string
}

// NewFakeModrinth starts a fake closed with the test.
func NewFakeModrinth(t *testing.T) *FakeModrinth {
	t.Helper()
	f := &FakeModrinth{versions: make(map[string][]ModrinthVersion), files: make(map[string]Artifact)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// AddVersion publishes a version of project.
func (f *FakeModrinth) AddVersion(project string, v ModrinthVersion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[project] = append(f.versions[project], v)
	for _, file := range v.Files {
		f.files[file.Name] = file.Artifact
	}
}

// Queries returns the raw query strings of version listings, in order.
func (f *FakeModrinth) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *FakeModrinth) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "files":
		a, ok := f.files[parts[1]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		f.add(a.Name)
		_, _ = w.Write(a.Body)

	case len(parts) == 4 && parts[0] == "v2" && parts[1] == "project" && parts[3] == "version":
		versions, ok := f.versions[parts[2]]
		if !ok {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		f.queries = append(f.queries, r.URL.RawQuery)
		out := make([]map[string]interface{}, 0, len(versions))
		for _, v := range versions {
			out = append(out, f.versionJSON(v))
		}
		writeJSON(w, out)

	default:
		http.NotFound(w, r)
	}
}

func (f *FakeModrinth) versionJSON(v ModrinthVersion) map[string]interface{} {
	files := make([]map[string]interface{}, 0, len(v.Files))
	for _, file := range v.Files {
		hashes := map[string]string{}
		if !file.NoHash {
			sum := sha512.Sum512(file.Body)
			hashes["sha512"] = hex.EncodeToString(sum[:])
		}
		files = append(files, map[string]interface{}{
			"url":      f.URL + "/files/" + file.Name,
			"filename": file.Name,
			"primary":  file.Primary,
			"hashes":   hashes,
		})
	}
	return map[string]interface{}{
		"id":             v.ID,
		"version_number": v.ID,
		"date_published": v.Published.UTC().Format(time.RFC3339),
		"files":          files,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
