package publish

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/server"

	"github.com/mlounello/alcohol-origins-geomap-staging/dataset"
	"github.com/mlounello/alcohol-origins-geomap-staging/render"
	"github.com/mlounello/alcohol-origins-geomap-staging/style"
)

func TestMain(m *testing.M) {
	// serve local remotes in-process rather than via git-upload-pack
	client.InstallProtocol("file", server.NewClient(server.DefaultLoader))

	os.Exit(m.Run())
}

func TestPublish(t *testing.T) {
	remote := origin(t)
	p := publisher(remote)

	checkout, err := p.Checkout()
	if err != nil {
		t.Fatalf("Unexpected error checking out publish branch (%v)", err)
	}

	defer checkout.Close()

	if m := checkout.Manifest(); m != nil {
		t.Errorf("Incorrect manifest for unpublished branch\n   expected: %v\n   got:      %v\n", nil, m)
	}

	if hash := checkout.Head(); hash != "" {
		t.Errorf("Incorrect head for unpublished branch\n   expected: %q\n   got:      %q\n", "", hash)
	}

	site := testsite(t, "Earliest chemically confirmed barley beer")
	addManifest(t, site)

	result, err := checkout.Apply(site, Message(site.Hash(), 1))
	if err != nil {
		t.Fatalf("Unexpected error publishing site (%v)", err)
	}

	if result.Action != Published {
		t.Errorf("Incorrect publish action\n   expected: %v\n   got:      %v\n", Published, result.Action)
	}

	if result.Commit == "" {
		t.Errorf("Incorrect publish result - expected commit hash, got %q", result.Commit)
	}

	if hash := head(t, remote, "gh-pages"); hash != result.Commit {
		t.Errorf("Incorrect remote branch head\n   expected: %v\n   got:      %v\n", result.Commit, hash)
	}
}

func TestPublishWithExistingBranch(t *testing.T) {
	remote := origin(t)
	p := publisher(remote)

	site := testsite(t, "Earliest chemically confirmed barley beer")
	addManifest(t, site)
	publish(t, p, site)

	checkout, err := p.Checkout()
	if err != nil {
		t.Fatalf("Unexpected error checking out publish branch (%v)", err)
	}

	defer checkout.Close()

	m := checkout.Manifest()
	if m == nil {
		t.Fatalf("Expected manifest on published branch, got %v", m)
	}

	if m.ContentHash != site.Hash() {
		t.Errorf("Incorrect content hash in published manifest\n   expected: %v\n   got:      %v\n", site.Hash(), m.ContentHash)
	}

	if hash := checkout.Head(); hash == "" {
		t.Errorf("Incorrect head for published branch - expected commit hash, got %q", hash)
	}
}

func TestPublishWithUnchangedContent(t *testing.T) {
	remote := origin(t)
	p := publisher(remote)

	site := testsite(t, "Earliest chemically confirmed barley beer")
	addManifest(t, site)

	first := publish(t, p, site)

	checkout, err := p.Checkout()
	if err != nil {
		t.Fatalf("Unexpected error checking out publish branch (%v)", err)
	}

	defer checkout.Close()

	result, err := checkout.Apply(site, Message(site.Hash(), 1))
	if err != nil {
		t.Fatalf("Unexpected error republishing site (%v)", err)
	}

	if result.Action != ContentUnchanged {
		t.Errorf("Incorrect publish action\n   expected: %v\n   got:      %v\n", ContentUnchanged, result.Action)
	}

	if result.Commit != "" {
		t.Errorf("Incorrect publish result\n   expected: %q\n   got:      %q\n", "", result.Commit)
	}

	if hash := head(t, remote, "gh-pages"); hash != first {
		t.Errorf("Incorrect remote branch head\n   expected: %v\n   got:      %v\n", first, hash)
	}
}

func TestPublishWithChangedContent(t *testing.T) {
	remote := origin(t)
	p := publisher(remote)

	before := testsite(t, "Earliest chemically confirmed barley beer")
	addManifest(t, before)

	first := publish(t, p, before)

	after := testsite(t, "Earliest brewing residues from Godin Tepe")
	addManifest(t, after)

	checkout, err := p.Checkout()
	if err != nil {
		t.Fatalf("Unexpected error checking out publish branch (%v)", err)
	}

	defer checkout.Close()

	if m := checkout.Manifest(); m == nil || m.ContentHash != before.Hash() {
		t.Fatalf("Incorrect manifest on published branch\n   expected: %v\n   got:      %v\n", before.Hash(), m)
	}

	result, err := checkout.Apply(after, Message(after.Hash(), 1))
	if err != nil {
		t.Fatalf("Unexpected error republishing site (%v)", err)
	}

	if result.Action != Published {
		t.Errorf("Incorrect publish action\n   expected: %v\n   got:      %v\n", Published, result.Action)
	}

	if result.Commit == first {
		t.Errorf("Incorrect publish result - expected new commit, got %v", result.Commit)
	}

	if hash := head(t, remote, "gh-pages"); hash != result.Commit {
		t.Errorf("Incorrect remote branch head\n   expected: %v\n   got:      %v\n", result.Commit, hash)
	}
}

func TestMessage(t *testing.T) {
	expected := "geomap: publish 0f0e0d0 (42 points)"

	if msg := Message("0f0e0d0c0b0a0908", 42); msg != expected {
		t.Errorf("Incorrect commit message\n   expected: %v\n   got:      %v\n", expected, msg)
	}
}

func TestMessageWithShortHash(t *testing.T) {
	expected := "geomap: publish abc (7 points)"

	if msg := Message("abc", 7); msg != expected {
		t.Errorf("Incorrect commit message\n   expected: %v\n   got:      %v\n", expected, msg)
	}
}

func TestAuth(t *testing.T) {
	p := Publisher{
		URL:   "https://github.com/example/alcohol-origins.git",
		Token: "ghp_qwerty",
	}

	auth, ok := p.auth().(*githttp.BasicAuth)
	if !ok {
		t.Fatalf("Incorrect auth method\n   expected: %T\n   got:      %T\n", &githttp.BasicAuth{}, p.auth())
	}

	if auth.Username != "git" {
		t.Errorf("Incorrect auth username\n   expected: %v\n   got:      %v\n", "git", auth.Username)
	}

	if auth.Password != "ghp_qwerty" {
		t.Errorf("Incorrect auth password\n   expected: %v\n   got:      %v\n", "ghp_qwerty", auth.Password)
	}
}

func TestAuthWithUsername(t *testing.T) {
	p := Publisher{
		URL:      "https://github.com/example/alcohol-origins.git",
		Token:    "ghp_qwerty",
		Username: "octocat",
	}

	auth, ok := p.auth().(*githttp.BasicAuth)
	if !ok {
		t.Fatalf("Incorrect auth method\n   expected: %T\n   got:      %T\n", &githttp.BasicAuth{}, p.auth())
	}

	if auth.Username != "octocat" {
		t.Errorf("Incorrect auth username\n   expected: %v\n   got:      %v\n", "octocat", auth.Username)
	}
}

func TestAuthWithLocalRemote(t *testing.T) {
	p := Publisher{
		URL:   "/var/lib/geomap/site.git",
		Token: "ghp_qwerty",
	}

	if auth := p.auth(); auth != nil {
		t.Errorf("Incorrect auth for local remote\n   expected: %v\n   got:      %v\n", nil, auth)
	}
}

func TestAuthWithoutToken(t *testing.T) {
	p := Publisher{
		URL: "https://github.com/example/alcohol-origins.git",
	}

	if auth := p.auth(); auth != nil {
		t.Errorf("Incorrect auth without token\n   expected: %v\n   got:      %v\n", nil, auth)
	}
}

func origin(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "origin.git")

	if _, err := git.PlainInit(dir, true); err != nil {
		t.Fatalf("Unexpected error initialising remote repository (%v)", err)
	}

	return dir
}

func publisher(url string) *Publisher {
	return &Publisher{
		URL:    url,
		Branch: "gh-pages",
		Author: "geomap",
		Email:  "geomap@example.com",
	}
}

func publish(t *testing.T, p *Publisher, site *render.Site) string {
	t.Helper()

	checkout, err := p.Checkout()
	if err != nil {
		t.Fatalf("Unexpected error checking out publish branch (%v)", err)
	}

	defer checkout.Close()

	result, err := checkout.Apply(site, Message(site.Hash(), 1))
	if err != nil {
		t.Fatalf("Unexpected error publishing site (%v)", err)
	}

	return result.Commit
}

func head(t *testing.T, remote string, branch string) string {
	t.Helper()

	repo, err := git.PlainOpen(remote)
	if err != nil {
		t.Fatalf("Unexpected error opening remote repository (%v)", err)
	}

	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		t.Fatalf("Unexpected error resolving branch %v (%v)", branch, err)
	}

	return ref.Hash().String()
}

func testsite(t *testing.T, description string) *render.Site {
	t.Helper()

	d := &dataset.Dataset{
		Records: []dataset.Record{
			{
				NodeID:      "beer-sumer",
				Type:        "Beer",
				Group:       "Grain",
				Date:        "3500 BCE",
				Description: description,
				Citation:    "Hornsey 2003",
				Latitude:    31.0,
				Longitude:   46.1,
				Year:        -3500,
				Radius:      10,
			},
		},
	}

	site, err := render.Build(render.NewPayload(d, style.Default()))
	if err != nil {
		t.Fatalf("Unexpected error building site (%v)", err)
	}

	return site
}

func addManifest(t *testing.T, site *render.Site) {
	t.Helper()

	m := render.Manifest{
		GeneratedAt:   time.Date(2023, time.June, 15, 12, 0, 0, 0, time.UTC),
		SpreadsheetID: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
		Rows:          1,
		Points:        1,
		ContentHash:   site.Hash(),
	}

	if err := site.AddManifest(m); err != nil {
		t.Fatalf("Unexpected error adding manifest (%v)", err)
	}
}
