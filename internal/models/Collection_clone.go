package models

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	out := &Collection{
		Root:    c.Root,
		Pages:   make(map[string]*Page, len(c.Pages)),
		Folders: make(map[string]*PageFolder, len(c.Folders)),
	}
	for id, page := range c.Pages {
		out.Pages[id] = page.Clone()
	}
	for id, folder := range c.Folders {
		f := *folder
		f.Children = append([]string(nil), folder.Children...)
		out.Folders[id] = &f
	}
	return out
}
