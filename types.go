package layerrenamer

type NodeKind string

const (
	KindDocument     NodeKind = "DOCUMENT"
	KindPage         NodeKind = "PAGE"
	KindFrame        NodeKind = "FRAME"
	KindGroup        NodeKind = "GROUP"
	KindComponent    NodeKind = "COMPONENT"
	KindComponentSet NodeKind = "COMPONENT_SET"
	KindInstance     NodeKind = "INSTANCE"
	KindText         NodeKind = "TEXT"
	KindRectangle    NodeKind = "RECTANGLE"
)

// Node is a layer in the document tree. The renamer only ever writes Name.
type Node struct {
	ID            string
	Name          string
	Type          NodeKind
	Children      []*Node
	MainComponent *Component
}

// Component is the definition an instance node was created from.
type Component struct {
	ID     string
	Name   string
	Parent *ComponentSet
}

// ComponentSet groups component variants under a shared name. Its name is
// the key every rename rule matches against.
type ComponentSet struct {
	ID   string
	Name string
}

type RenamedItem struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
	NewName      string `json:"new_name"`
	Type         string `json:"type"`
}

type CustomRename struct {
	Name    string `json:"name" yaml:"name"`
	NewName string `json:"new_name" yaml:"new_name"`
}

type UniqueInstance struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type RenameAction struct {
	Node    *Node
	OldName string
	NewName string
}

type RenameResult struct {
	Items   []RenamedItem
	Actions []RenameAction
}

type RenameRequest struct {
	ButtonName       string         `json:"button_name"`
	ServiceTilesName string         `json:"service_tiles_name"`
	ListItemName     string         `json:"list_item_name"`
	CustomRenames    []CustomRename `json:"custom_renames,omitempty"`
}

type RenameReport struct {
	RenamedItems []RenamedItem  `json:"renamed_items"`
	Counts       map[string]int `json:"counts"`
	Total        int            `json:"total"`
}

type HighlightResult struct {
	ComponentType string   `json:"component_type"`
	NodeIDs       []string `json:"node_ids"`
	Count         int      `json:"count"`
	Message       string   `json:"message"`
}
