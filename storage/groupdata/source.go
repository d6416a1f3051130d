package groupdata

import (
	"io/fs"
	"os"
	"path"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/classreport/core"
	"github.com/trezcool/classreport/core/report"
	appfs "github.com/trezcool/classreport/fs"
)

// DefaultManifest is the manifest path inside appfs.FS.
const DefaultManifest = "data/groups.yaml"

var ErrNoGroups = errors.New("manifest declares no groups")

type manifest struct {
	Handover string `yaml:"handover"`
	Groups   []struct {
		Name string `yaml:"name"`
		File string `yaml:"file"`
	} `yaml:"groups"`
}

// Source reads raw group blocks listed by a YAML manifest. Files are relative to the manifest.
type Source struct {
	fsys     fs.FS
	manifest string
}

var _ report.Source = (*Source)(nil)

func NewSource(fsys fs.FS, manifestPath string) *Source {
	return &Source{fsys: fsys, manifest: manifestPath}
}

// NewSourceFromConfig reads conf.Report.DataDir when set, the bundled data otherwise.
func NewSourceFromConfig(conf *core.Config) *Source {
	if conf.Report.DataDir != "" {
		return NewSource(os.DirFS(conf.Report.DataDir), "groups.yaml")
	}
	return NewSource(appfs.FS, DefaultManifest)
}

func (src *Source) load() (manifest, error) {
	var m manifest
	data, err := fs.ReadFile(src.fsys, src.manifest)
	if err != nil {
		return m, errors.Wrap(err, "reading manifest")
	}
	if err = yaml.Unmarshal(data, &m); err != nil {
		return m, errors.Wrapf(err, "decoding manifest %s", src.manifest)
	}
	return m, nil
}

func (src *Source) resolve(file string) string {
	return path.Join(path.Dir(src.manifest), file)
}

func (src *Source) RawGroups() ([]report.RawGroup, error) {
	m, err := src.load()
	if err != nil {
		return nil, err
	}
	if len(m.Groups) == 0 {
		return nil, ErrNoGroups
	}

	raws := make([]report.RawGroup, 0, len(m.Groups))
	for _, g := range m.Groups {
		if g.Name == "" || g.File == "" {
			return nil, errors.Errorf("manifest entry %+v: name and file are required", g)
		}
		data, err := fs.ReadFile(src.fsys, src.resolve(g.File))
		if err != nil {
			return nil, errors.Wrapf(err, "reading group %q", g.Name)
		}
		raws = append(raws, report.RawGroup{Name: g.Name, Data: string(data)})
	}
	return raws, nil
}

// Handover returns the teacher handover document, or "" when the manifest names none.
func (src *Source) Handover() (string, error) {
	m, err := src.load()
	if err != nil {
		return "", err
	}
	if m.Handover == "" {
		return "", nil
	}
	data, err := fs.ReadFile(src.fsys, src.resolve(m.Handover))
	if err != nil {
		return "", errors.Wrap(err, "reading handover")
	}
	return string(data), nil
}
