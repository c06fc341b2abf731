package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bplint/bplint/pkg/config"
	"github.com/bplint/bplint/pkg/models"
)

// Ext is the file extension of serialized program files.
const Ext = ".bp.yaml"

// Dir is a Source over a directory tree of serialized program files. Each
// *.bp.yaml file is one program; its logical path derives from its
// location relative to the directory root.
type Dir struct {
	root    string
	logical string
	cfg     config.SourceConfig

	mu       sync.RWMutex
	index    map[string]string // logical path -> file path
	matchers []gitignore.Matcher
}

// NewDir creates a directory source rooted at root. Programs are exposed
// under the logicalRoot prefix, e.g. /Game.
func NewDir(root, logicalRoot string, cfg config.SourceConfig) *Dir {
	return &Dir{
		root:    root,
		logical: strings.TrimSuffix(logicalRoot, "/"),
		cfg:     cfg,
		index:   make(map[string]string),
	}
}

// findGitRoot walks upward looking for a .git directory. Empty when the
// tree is not under version control.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns combines configured exclude patterns with .gitignore
// files found in the tree, both in gitignore syntax.
func (d *Dir) loadExcludePatterns() {
	var patterns []gitignore.Pattern
	for _, pattern := range d.cfg.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if d.cfg.Gitignore {
		if gitRoot := findGitRoot(d.root); gitRoot != "" {
			bfs := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(bfs, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	d.matchers = nil
	if len(patterns) > 0 {
		d.matchers = append(d.matchers, gitignore.NewMatcher(patterns))
	}
}

func (d *Dir) isExcluded(relPath string, isDir bool) bool {
	if len(d.matchers) == 0 {
		return false
	}
	parts := strings.Split(relPath, string(filepath.Separator))
	for _, m := range d.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// List walks the directory, indexing every program file not excluded by
// the ignore patterns, and returns the logical paths matching the filters.
func (d *Dir) List(pathFilters []string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.loadExcludePatterns()
	d.index = make(map[string]string)

	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		relPath, _ := filepath.Rel(d.root, path)
		if entry.IsDir() {
			if relPath != "." && d.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.isExcluded(relPath, false) {
			return nil
		}
		if !strings.HasSuffix(path, Ext) {
			return nil
		}
		d.index[d.logicalPath(relPath)] = path
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(d.index))
	for logical := range d.index {
		if matchesAny(logical, pathFilters) {
			out = append(out, logical)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load reads and decodes the program file indexed under the logical path.
func (d *Dir) Load(path string) (*models.Program, error) {
	d.mu.RLock()
	filePath, ok := d.index[path]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("program not found: %s", path)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filePath, err)
	}
	if p.Path == "" {
		p.Path = path
	}
	return p, nil
}

// logicalPath maps a relative file path to the logical program path:
// Characters/BP_Hero.bp.yaml under /Game becomes /Game/Characters/BP_Hero.
func (d *Dir) logicalPath(relPath string) string {
	rel := strings.TrimSuffix(filepath.ToSlash(relPath), Ext)
	return d.logical + "/" + rel
}

// Wire structs for the on-disk format. The graph model uses pointers and
// back-references yaml cannot express, so files carry nodes plus an edge
// list and Decode rebuilds the links.

type wireProgram struct {
	Name       string                 `yaml:"name"`
	Path       string                 `yaml:"path,omitempty"`
	Kind       string                 `yaml:"kind,omitempty"` // normal, interface
	Parent     *wireClass             `yaml:"parent,omitempty"`
	Interfaces []models.InterfaceDesc `yaml:"interfaces,omitempty"`
	Variables  []models.Variable      `yaml:"variables,omitempty"`
	Graphs     []wireGraph            `yaml:"graphs"`
}

type wireClass struct {
	Name       string                 `yaml:"name"`
	Functions  []string               `yaml:"functions,omitempty"`
	Interfaces []models.InterfaceDesc `yaml:"interfaces,omitempty"`
	Super      *wireClass             `yaml:"super,omitempty"`
}

type wireGraph struct {
	Name  string     `yaml:"name"`
	Kind  string     `yaml:"kind,omitempty"` // event, function, macro
	Nodes []wireNode `yaml:"nodes"`
	Edges []wireEdge `yaml:"edges,omitempty"`
}

type wireNode struct {
	ID            string             `yaml:"id,omitempty"`
	Kind          string             `yaml:"kind,omitempty"`
	Title         string             `yaml:"title"`
	Member        string             `yaml:"member,omitempty"`
	TimerFunction string             `yaml:"timer_function,omitempty"`
	Pure          bool               `yaml:"pure,omitempty"`
	Cast          *models.CastTarget `yaml:"cast,omitempty"`
	Pins          []wirePin          `yaml:"pins,omitempty"`
}

type wirePin struct {
	Name      string `yaml:"name"`
	Direction string `yaml:"direction"`      // in, out
	Kind      string `yaml:"kind,omitempty"` // exec, data, delegate
}

type wireEdge struct {
	From wireEndpoint `yaml:"from"`
	To   wireEndpoint `yaml:"to"`
}

type wireEndpoint struct {
	Node string `yaml:"node"`
	Pin  string `yaml:"pin"`
}

var nodeKindByName = func() map[string]models.NodeKind {
	m := make(map[string]models.NodeKind)
	for k := models.NodeOther; k <= models.NodeLiteral; k++ {
		m[k.String()] = k
	}
	return m
}()

// Decode parses a serialized program file and rebuilds the graph model,
// assigning fresh identifiers to nodes that carry none.
func Decode(data []byte) (*models.Program, error) {
	var wp wireProgram
	if err := yaml.Unmarshal(data, &wp); err != nil {
		return nil, err
	}
	if wp.Name == "" {
		return nil, fmt.Errorf("program has no name")
	}

	p := &models.Program{
		Name:       wp.Name,
		Path:       wp.Path,
		Interfaces: wp.Interfaces,
		Variables:  wp.Variables,
		Parent:     decodeClass(wp.Parent),
	}
	if wp.Kind == "interface" {
		p.Kind = models.ProgramInterface
	}

	for gi, wg := range wp.Graphs {
		g, err := decodeGraph(wg)
		if err != nil {
			return nil, fmt.Errorf("graph %q (index %d): %w", wg.Name, gi, err)
		}
		switch wg.Kind {
		case "function":
			p.FunctionGraphs = append(p.FunctionGraphs, g)
		case "macro":
			p.MacroGraphs = append(p.MacroGraphs, g)
		default:
			p.EventGraphs = append(p.EventGraphs, g)
		}
	}
	return p, nil
}

func decodeClass(wc *wireClass) *models.ClassInfo {
	if wc == nil {
		return nil
	}
	return &models.ClassInfo{
		Name:       wc.Name,
		Functions:  wc.Functions,
		Interfaces: wc.Interfaces,
		Super:      decodeClass(wc.Super),
	}
}

func decodeGraph(wg wireGraph) (*models.Graph, error) {
	g := &models.Graph{Name: wg.Name}
	switch wg.Kind {
	case "function":
		g.Kind = models.FunctionGraph
	case "macro":
		g.Kind = models.MacroGraph
	}

	byID := make(map[string]*models.Node, len(wg.Nodes))
	for _, wn := range wg.Nodes {
		kind, ok := nodeKindByName[wn.Kind]
		if !ok && wn.Kind != "" {
			return nil, fmt.Errorf("node %q: unknown kind %q", wn.Title, wn.Kind)
		}
		n := g.AddNode(kind, wn.Title)
		n.ID = wn.ID
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		n.Member = wn.Member
		n.TimerFunction = wn.TimerFunction
		n.Pure = wn.Pure
		n.Cast = wn.Cast
		for _, wpin := range wn.Pins {
			dir := models.PinInput
			if wpin.Direction == "out" {
				dir = models.PinOutput
			}
			var kind models.PinKind
			switch wpin.Kind {
			case "data":
				kind = models.PinData
			case "delegate":
				kind = models.PinDelegate
			}
			n.AddPin(wpin.Name, dir, kind)
		}
		if other, dup := byID[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q (%s, %s)", n.ID, other.Title, n.Title)
		}
		byID[n.ID] = n
	}

	for _, e := range wg.Edges {
		from, err := resolveEndpoint(byID, e.From)
		if err != nil {
			return nil, err
		}
		to, err := resolveEndpoint(byID, e.To)
		if err != nil {
			return nil, err
		}
		models.Connect(from, to)
	}
	return g, nil
}

func resolveEndpoint(byID map[string]*models.Node, ep wireEndpoint) (*models.Pin, error) {
	n, ok := byID[ep.Node]
	if !ok {
		return nil, fmt.Errorf("edge references unknown node %q", ep.Node)
	}
	pin := n.FindPin(ep.Pin)
	if pin == nil {
		return nil, fmt.Errorf("node %q has no pin %q", ep.Node, ep.Pin)
	}
	return pin, nil
}
