package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/pkg/errors"
)

// ReleaseStore exchanges the artifact triple with GitHub releases, keyed by
// tag. Publishing keeps the tag atomic: assets are uploaded to a draft
// release and the draft is only published once all of them are in place, so
// a fetch by tag sees either a complete triple or no release at all.
type ReleaseStore struct {
	client *github.Client
	owner  string
	repo   string

	// downloadClient follows asset redirects; swapped in tests.
	downloadClient *http.Client
}

// NewReleaseStore builds a store for "owner/repo".
func NewReleaseStore(token, repoSlug string) (*ReleaseStore, error) {
	owner, repo, ok := strings.Cut(repoSlug, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository %q, expected owner/repo", repoSlug)
	}
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &ReleaseStore{
		client:         client,
		owner:          owner,
		repo:           repo,
		downloadClient: http.DefaultClient,
	}, nil
}

// Publish uploads the triple from dir under the given tag, replacing any
// release previously published there. The old release is removed first and
// the new one stays a draft until every asset has been uploaded.
func (s *ReleaseStore) Publish(ctx context.Context, tag, dir string) error {
	if !Exists(dir) {
		return fmt.Errorf("no complete artifact triple in %s", dir)
	}

	old, resp, err := s.client.Repositories.GetReleaseByTag(ctx, s.owner, s.repo, tag)
	if err != nil && (resp == nil || resp.StatusCode != http.StatusNotFound) {
		return errors.Wrapf(err, "looking up release %s", tag)
	}
	if old != nil {
		if _, err := s.client.Repositories.DeleteRelease(ctx, s.owner, s.repo, old.GetID()); err != nil {
			return errors.Wrapf(err, "deleting stale release %s", tag)
		}
	}

	draft, _, err := s.client.Repositories.CreateRelease(ctx, s.owner, s.repo, &github.RepositoryRelease{
		TagName: github.String(tag),
		Name:    github.String("Model artifacts " + tag),
		Draft:   github.Bool(true),
	})
	if err != nil {
		return errors.Wrapf(err, "creating draft release %s", tag)
	}

	for _, name := range Files() {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return errors.Wrapf(err, "opening %s", name)
		}
		_, _, err = s.client.Repositories.UploadReleaseAsset(ctx, s.owner, s.repo, draft.GetID(),
			&github.UploadOptions{Name: name}, f)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "uploading %s", name)
		}
	}

	_, _, err = s.client.Repositories.EditRelease(ctx, s.owner, s.repo, draft.GetID(), &github.RepositoryRelease{
		TagName: github.String(tag),
		Draft:   github.Bool(false),
	})
	return errors.Wrapf(err, "publishing release %s", tag)
}

// Fetch downloads the triple published under tag into dir. It refuses
// releases missing any of the three artifacts and only moves files into
// place once all downloads have succeeded, so dir never ends up holding a
// mixed triple.
func (s *ReleaseStore) Fetch(ctx context.Context, tag, dir string) error {
	rel, _, err := s.client.Repositories.GetReleaseByTag(ctx, s.owner, s.repo, tag)
	if err != nil {
		return errors.Wrapf(err, "release %s not found", tag)
	}

	assets, _, err := s.client.Repositories.ListReleaseAssets(ctx, s.owner, s.repo, rel.GetID(), nil)
	if err != nil {
		return errors.Wrapf(err, "listing assets of %s", tag)
	}
	byName := make(map[string]*github.ReleaseAsset, len(assets))
	for _, a := range assets {
		byName[a.GetName()] = a
	}
	for _, name := range Files() {
		if _, ok := byName[name]; !ok {
			return fmt.Errorf("release %s is incomplete: missing %s", tag, name)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating data dir")
	}
	tmps := make(map[string]string, len(Files()))
	defer func() {
		for _, tmp := range tmps {
			os.Remove(tmp)
		}
	}()
	for _, name := range Files() {
		tmp := filepath.Join(dir, name+".tmp")
		if err := s.downloadAsset(ctx, byName[name], tmp); err != nil {
			return errors.Wrapf(err, "downloading %s", name)
		}
		tmps[name] = tmp
	}
	for _, name := range Files() {
		if err := os.Rename(tmps[name], filepath.Join(dir, name)); err != nil {
			return errors.Wrapf(err, "installing %s", name)
		}
		delete(tmps, name)
	}
	return nil
}

func (s *ReleaseStore) downloadAsset(ctx context.Context, asset *github.ReleaseAsset, dest string) error {
	rc, _, err := s.client.Repositories.DownloadReleaseAsset(ctx, s.owner, s.repo, asset.GetID(), s.downloadClient)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
