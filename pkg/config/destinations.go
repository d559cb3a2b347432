package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/logging"
)

// Source keys may contain dots, so the destinations document uses a
// delimiter that cannot appear in them.
const destinationsDelim = "::"

// maxDestinationsBody bounds a destinations document fetched over HTTP.
const maxDestinationsBody = 8 << 20

var defaultDestinations = []byte(`# serverwrap destinations
#
# [destinations.mods]
# path = "mods"
#
# [destinations.mods.sources.fabric]
# transform = []
#
# [destinations.mods.sources.fabric.sources.sodium]
# type = "modrinth"
# project_id = "AANobbMI"
# game_version = "1.20.1"
# loader = "fabric"
`)

// Destinations is the root of the destinations declaration.
type Destinations struct {
	Destinations map[string]Destination `koanf:"destinations"`
}

// Destination is one output directory and the sources that populate it.
type Destination struct {
	Path    string               `koanf:"path"`
	Sources map[string]SourceSet `koanf:"sources"`
}

// SourceSet is a named group of sources sharing one transform pipeline.
type SourceSet struct {
	Transform []TransformDecl       `koanf:"transform"`
	Sources   map[string]SourceDecl `koanf:"sources"`
}

// TransformDecl declares one transform operation. Which fields apply depends on Type.
type TransformDecl struct {
	Type string `koanf:"type"`
	Path string `koanf:"path"`
	Name string `koanf:"name"`
}

// SourceDecl declares one remote artifact, tagged by Type. Which fields apply
// depends on Type:
//
//	github:   repository, tag, asset
//	modrinth: project_id, game_version, loader
//	s3:       url
type SourceDecl struct {
	Type        string `koanf:"type"`
	Repository  string `koanf:"repository"`
	Tag         string `koanf:"tag"`
	Asset       string `koanf:"asset"`
	ProjectID   string `koanf:"project_id"`
	GameVersion string `koanf:"game_version"`
	Loader      string `koanf:"loader"`
	URL         string `koanf:"url"`
}

// Names returns destination names in sorted order.
func (d *Destinations) Names() []string {
	return sortedKeys(d.Destinations)
}

// GroupNames returns source group names in sorted order.
func (d Destination) GroupNames() []string {
	return sortedKeys(d.Sources)
}

// Keys returns source keys in sorted order.
func (s SourceSet) Keys() []string {
	return sortedKeys(s.Sources)
}

// Validate checks that every destination can be materialized. Source
// declarations are checked when they are resolved so that one bad source
// only excludes itself.
func (d *Destinations) Validate() error {
	for _, name := range d.Names() {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("destination name %q must be a plain directory name", name)
		}
		if d.Destinations[name].Path == "" {
			return fmt.Errorf("destination %q has no path", name)
		}
	}
	return nil
}

// LoadDestinations reads the destinations declaration from a local path or an
// http(s) URL. A missing local file is created with a commented example.
func LoadDestinations(ctx context.Context, client *http.Client, location string) (*Destinations, error) {
	logger := logging.GetLogger("config")

	var (
		dests *Destinations
		err   error
	)
	if isURL(location) {
		dests, err = fetchDestinations(ctx, client, location)
	} else {
		dests, err = readDestinations(location)
	}
	if err != nil {
		return nil, err
	}

	if err := dests.Validate(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "invalid destinations %s", location)
	}

	logger.Debug().Str("location", location).Strs("destinations", dests.Names()).Msg("Destinations loaded")
	return dests, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func isYAML(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func readDestinations(location string) (*Destinations, error) {
	created, err := ensureFile(location, defaultDestinations)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to create destinations at %s", location)
	}
	if created {
		logger := logging.GetLogger("config")
		logger.Info().Str("path", location).Msg("Wrote empty destinations file")
	}

	if isYAML(filepath.Base(location)) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read destinations %s", location)
		}
		return parseDestinationsYAML(data, location)
	}

	k := koanf.New(destinationsDelim)
	if err := k.Load(file.Provider(location), toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse destinations %s", location)
	}
	return decodeDestinations(k, location)
}

func fetchDestinations(ctx context.Context, client *http.Client, location string) (*Destinations, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "invalid destinations URL %s", location)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNetwork, "failed to fetch destinations from %s", location)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf(errors.ErrHTTPStatus, "destinations request to %s returned %s", location, resp.Status).
			WithDetail("status", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDestinationsBody))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNetwork, "failed to read destinations from %s", location)
	}

	u, _ := url.Parse(location)
	if strings.Contains(resp.Header.Get("Content-Type"), "yaml") || (u != nil && isYAML(u.Path)) {
		return parseDestinationsYAML(data, location)
	}
	return ParseDestinationsTOML(data, location)
}

// ParseDestinationsTOML decodes a TOML destinations document. origin names
// the document in error messages.
func ParseDestinationsTOML(data []byte, origin string) (*Destinations, error) {
	k := koanf.New(destinationsDelim)
	if err := k.Load(&rawBytesProvider{bytes: data}, toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse destinations %s", origin)
	}
	return decodeDestinations(k, origin)
}

func parseDestinationsYAML(data []byte, origin string) (*Destinations, error) {
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse destinations %s", origin)
	}

	k := koanf.New(destinationsDelim)
	if err := k.Load(confmap.Provider(raw, ""), nil); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load destinations %s", origin)
	}
	return decodeDestinations(k, origin)
}

func decodeDestinations(k *koanf.Koanf, origin string) (*Destinations, error) {
	var dests Destinations
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &dests,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	}
	if err := k.UnmarshalWithConf("", &dests, unmarshalConf); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to decode destinations %s", origin)
	}
	if dests.Destinations == nil {
		dests.Destinations = map[string]Destination{}
	}
	return &dests, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
