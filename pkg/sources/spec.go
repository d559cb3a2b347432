package sources

import (
	"fmt"

	"github.com/arthur-debert/serverwrap/pkg/config"
	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/sources/github"
	"github.com/arthur-debert/serverwrap/pkg/sources/objectstore"
)

// Source kinds accepted in the destinations declaration.
const (
	KindGitHub   = "github"
	KindModrinth = "modrinth"
	KindObject   = "s3"
)

// Spec describes one remote artifact. The set of implementations is closed.
type Spec interface {
	Kind() string
	String() string
	isSpec()
}

// GitHub selects an asset of a GitHub release.
type GitHub struct {
	Owner string
	Repo  string
	// Tag is the release tag; empty means the latest release.
	Tag string
	// Asset is a glob over asset names; empty matches any asset.
	Asset string
}

func (GitHub) Kind() string { return KindGitHub }
func (GitHub) isSpec()      {}

func (g GitHub) String() string {
	s := "github:" + g.Owner + "/" + g.Repo
	if g.Tag != "" {
		s += "@" + g.Tag
	}
	if g.Asset != "" {
		s += "#" + g.Asset
	}
	return s
}

// Modrinth selects the newest version of a Modrinth project.
type Modrinth struct {
	ProjectID   string
	GameVersion string
	Loader      string
}

func (Modrinth) Kind() string { return KindModrinth }
func (Modrinth) isSpec()      {}

func (m Modrinth) String() string {
	s := "modrinth:" + m.ProjectID
	if m.GameVersion != "" {
		s += "@" + m.GameVersion
	}
	if m.Loader != "" {
		s += "/" + m.Loader
	}
	return s
}

// Object selects one object in an S3-compatible bucket.
type Object struct {
	Location objectstore.Location
}

func (Object) Kind() string { return KindObject }
func (Object) isSpec()      {}

func (o Object) String() string { return o.Location.String() }

// FromDecl converts a declaration into a Spec. An unknown type is a
// configuration error; a malformed identifier is ErrMalformedReference.
func FromDecl(decl config.SourceDecl) (Spec, error) {
	switch decl.Type {
	case KindGitHub:
		owner, repo, err := github.ParseRepository(decl.Repository)
		if err != nil {
			return nil, err
		}
		return GitHub{Owner: owner, Repo: repo, Tag: decl.Tag, Asset: decl.Asset}, nil

	case KindModrinth:
		if decl.ProjectID == "" {
			return nil, errors.New(errors.ErrMalformedReference, "modrinth source requires project_id")
		}
		return Modrinth{ProjectID: decl.ProjectID, GameVersion: decl.GameVersion, Loader: decl.Loader}, nil

	case KindObject:
		loc, err := objectstore.ParseURL(decl.URL)
		if err != nil {
			return nil, err
		}
		return Object{Location: loc}, nil

	default:
		return nil, errors.Newf(errors.ErrConfigInvalid, "unknown source type %q", decl.Type).
			WithDetail("known", fmt.Sprintf("%s, %s, %s", KindGitHub, KindModrinth, KindObject))
	}
}
