package layerrenamer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultFilePermissions = 0644

// Document is an in-memory document tree together with the component sets
// its instances refer to.
type Document struct {
	Name          string
	Pages         []*Node
	CurrentPage   *Node
	Selection     []string
	ComponentSets []*ComponentSet
	Components    []*Component

	index         map[string]*Node
	parents       map[*Node]*Node
	componentRefs map[*Node]string
}

type documentFile struct {
	Name          string             `yaml:"name" json:"name"`
	CurrentPage   string             `yaml:"current_page,omitempty" json:"current_page,omitempty"`
	Selection     []string           `yaml:"selection,omitempty" json:"selection,omitempty"`
	ComponentSets []componentSetFile `yaml:"component_sets,omitempty" json:"component_sets,omitempty"`
	Components    []componentFile    `yaml:"components,omitempty" json:"components,omitempty"`
	Pages         []nodeFile         `yaml:"pages" json:"pages"`
}

type componentSetFile struct {
	ID         string          `yaml:"id" json:"id"`
	Name       string          `yaml:"name" json:"name"`
	Components []componentFile `yaml:"components,omitempty" json:"components,omitempty"`
}

type componentFile struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type nodeFile struct {
	ID        string     `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Type      string     `yaml:"type" json:"type"`
	Component string     `yaml:"component,omitempty" json:"component,omitempty"`
	Children  []nodeFile `yaml:"children,omitempty" json:"children,omitempty"`
}

// LoadDocument reads a YAML or JSON document from path.
func LoadDocument(ctx context.Context, path string) (*Document, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ParseDocument decodes a document and resolves instance links. Instances
// that refer to unknown components keep the reference but stay unresolved.
func ParseDocument(data []byte) (*Document, error) {
	var file documentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}

	doc := &Document{
		Name:          file.Name,
		Selection:     file.Selection,
		index:         make(map[string]*Node),
		parents:       make(map[*Node]*Node),
		componentRefs: make(map[*Node]string),
	}

	components := make(map[string]*Component)
	addComponent := func(c componentFile, set *ComponentSet) error {
		if _, exists := components[c.ID]; exists {
			return fmt.Errorf("duplicate component id %q", c.ID)
		}
		component := &Component{ID: c.ID, Name: c.Name, Parent: set}
		components[c.ID] = component
		doc.Components = append(doc.Components, component)
		return nil
	}

	for _, s := range file.ComponentSets {
		set := &ComponentSet{ID: s.ID, Name: s.Name}
		doc.ComponentSets = append(doc.ComponentSets, set)
		for _, c := range s.Components {
			if err := addComponent(c, set); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range file.Components {
		if err := addComponent(c, nil); err != nil {
			return nil, err
		}
	}

	for _, p := range file.Pages {
		page, err := doc.buildNode(p, components)
		if err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, page)
	}

	switch {
	case file.CurrentPage != "":
		for _, page := range doc.Pages {
			if page.ID == file.CurrentPage {
				doc.CurrentPage = page
				break
			}
		}
		if doc.CurrentPage == nil {
			return nil, fmt.Errorf("current page %q not found", file.CurrentPage)
		}
	case len(doc.Pages) > 0:
		doc.CurrentPage = doc.Pages[0]
	}

	return doc, nil
}

func (d *Document) buildNode(f nodeFile, components map[string]*Component) (*Node, error) {
	if f.ID == "" {
		return nil, fmt.Errorf("node %q has no id", f.Name)
	}
	if _, exists := d.index[f.ID]; exists {
		return nil, fmt.Errorf("duplicate node id %q", f.ID)
	}

	node := &Node{
		ID:   f.ID,
		Name: f.Name,
		Type: NodeKind(strings.ToUpper(f.Type)),
	}
	d.index[f.ID] = node

	if f.Component != "" {
		d.componentRefs[node] = f.Component
		node.MainComponent = components[f.Component]
	}

	for _, c := range f.Children {
		child, err := d.buildNode(c, components)
		if err != nil {
			return nil, err
		}
		d.parents[child] = node
		node.Children = append(node.Children, child)
	}

	return node, nil
}

// SaveDocument writes doc to path, as JSON when path ends in .json and as
// YAML otherwise.
func SaveDocument(ctx context.Context, path string, doc *Document) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := doc.Marshal(strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, DefaultFilePermissions)
}

// Marshal encodes the document in its file format.
func (d *Document) Marshal(asJSON bool) ([]byte, error) {
	file := documentFile{
		Name:      d.Name,
		Selection: d.Selection,
	}
	if d.CurrentPage != nil {
		file.CurrentPage = d.CurrentPage.ID
	}

	setFiles := make(map[string]int)
	for _, set := range d.ComponentSets {
		setFiles[set.ID] = len(file.ComponentSets)
		file.ComponentSets = append(file.ComponentSets, componentSetFile{ID: set.ID, Name: set.Name})
	}
	for _, c := range d.Components {
		entry := componentFile{ID: c.ID, Name: c.Name}
		if c.Parent == nil {
			file.Components = append(file.Components, entry)
			continue
		}
		i, ok := setFiles[c.Parent.ID]
		if !ok {
			return nil, fmt.Errorf("component %q belongs to unknown set %q", c.ID, c.Parent.ID)
		}
		file.ComponentSets[i].Components = append(file.ComponentSets[i].Components, entry)
	}

	for _, page := range d.Pages {
		file.Pages = append(file.Pages, d.nodeFile(page))
	}

	if asJSON {
		data, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("JSON marshal error: %w", err)
		}
		return append(data, '\n'), nil
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("YAML marshal error: %w", err)
	}
	return data, nil
}

func (d *Document) nodeFile(node *Node) nodeFile {
	f := nodeFile{
		ID:   node.ID,
		Name: node.Name,
		Type: string(node.Type),
	}
	if node.MainComponent != nil {
		f.Component = node.MainComponent.ID
	} else if ref, ok := d.componentRefs[node]; ok {
		f.Component = ref
	}
	for _, child := range node.Children {
		f.Children = append(f.Children, d.nodeFile(child))
	}
	return f
}

// FindByID returns the node with the given id.
func (d *Document) FindByID(id string) (*Node, bool) {
	node, ok := d.index[id]
	return node, ok
}

// RootsForRun returns the selected nodes, or the current page when nothing
// in the selection exists in the document. Repeated ids and nodes nested under
// another selected node are dropped so no layer is walked twice.
func (d *Document) RootsForRun() []*Node {
	selected := make(map[*Node]bool)
	for _, id := range d.Selection {
		if node, ok := d.index[id]; ok {
			selected[node] = true
		}
	}

	var roots []*Node
	seen := make(map[*Node]bool)
	for _, id := range d.Selection {
		node, ok := d.index[id]
		if !ok || seen[node] || d.hasSelectedAncestor(node, selected) {
			continue
		}
		seen[node] = true
		roots = append(roots, node)
	}
	if len(roots) > 0 {
		return roots
	}

	if d.CurrentPage != nil {
		return []*Node{d.CurrentPage}
	}
	return nil
}

func (d *Document) hasSelectedAncestor(node *Node, selected map[*Node]bool) bool {
	for parent := d.parents[node]; parent != nil; parent = d.parents[parent] {
		if selected[parent] {
			return true
		}
	}
	return false
}

// Select replaces the document selection with nodes.
func (d *Document) Select(nodes []*Node) {
	ids := make([]string, 0, len(nodes))
	for _, node := range nodes {
		ids = append(ids, node.ID)
	}
	d.Selection = ids
}
