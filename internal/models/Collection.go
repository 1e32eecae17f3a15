package models

const RootFolderID = "0"

// Collection is one loaded view of every page and folder.
type Collection struct {
	Root    string                 `json:"root"`
	Pages   map[string]*Page       `json:"pages"`
	Folders map[string]*PageFolder `json:"folders"`
}

func NewCollection() *Collection {
	return &Collection{
		Root:  RootFolderID,
		Pages: make(map[string]*Page),
		Folders: map[string]*PageFolder{
			RootFolderID: {ID: RootFolderID, Title: "root"},
		},
	}
}

// GetPageList flattens the folder tree depth-first in child order.
// Folders themselves are never returned and dangling ids are skipped.
func (c *Collection) GetPageList() []*Page {
	pages := make([]*Page, 0, len(c.Pages))
	visited := make(map[string]struct{}, len(c.Folders))
	var walk func(id string)
	walk = func(id string) {
		if page, ok := c.Pages[id]; ok {
			pages = append(pages, page)
			return
		}
		folder, ok := c.Folders[id]
		if !ok {
			return
		}
		if _, seen := visited[id]; seen {
			return
		}
		visited[id] = struct{}{}
		for _, child := range folder.Children {
			walk(child)
		}
	}
	walk(c.Root)
	return pages
}

// GetChangedPageList returns the changed pages the user has not viewed yet.
func (c *Collection) GetChangedPageList() []*Page {
	var changed []*Page
	for _, page := range c.GetPageList() {
		if page.IsChanged() {
			changed = append(changed, page)
		}
	}
	return changed
}

func (c *Collection) GetPage(id string) (*Page, bool) {
	page, ok := c.Pages[id]
	return page, ok
}

// ParentOf returns the folder holding id, if any.
func (c *Collection) ParentOf(id string) (*PageFolder, bool) {
	for _, folder := range c.Folders {
		for _, child := range folder.Children {
			if child == id {
				return folder, true
			}
		}
	}
	return nil, false
}

func (c *Collection) CountByState() map[PageState]int {
	counts := map[PageState]int{StateInit: 0, StateNoChange: 0, StateChanged: 0, StateError: 0}
	for _, page := range c.GetPageList() {
		counts[page.State]++
	}
	return counts
}
