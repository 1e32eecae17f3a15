package models

const SnapshotVersion = 1

// Snapshot is the persisted form of a Collection.
type Snapshot struct {
	Version int                    `json:"version"`
	Root    string                 `json:"root"`
	Pages   map[string]*Page       `json:"pages"`
	Folders map[string]*PageFolder `json:"folders"`
}

func (s *Snapshot) ToCollection() *Collection {
	c := NewCollection()
	if s.Root != "" {
		c.Root = s.Root
	}
	for id, page := range s.Pages {
		c.Pages[id] = page
	}
	for id, folder := range s.Folders {
		c.Folders[id] = folder
	}
	return c
}

func SnapshotOf(c *Collection) *Snapshot {
	return &Snapshot{
		Version: SnapshotVersion,
		Root:    c.Root,
		Pages:   c.Pages,
		Folders: c.Folders,
	}
}
