package models

// PageState is the result of the most recent scan of a page.
type PageState string

const (
	StateInit     PageState = "init"
	StateNoChange PageState = "no_change"
	StateChanged  PageState = "changed"
	StateError    PageState = "error"
)

// ContentMode selects how fetched HTML is reduced to comparable text.
type ContentMode string

const (
	ContentText    ContentMode = "text"
	ContentArticle ContentMode = "article"
)

const DefaultChangeThreshold = 100

// Page is a tracked web page. Timestamps are milliseconds since the epoch,
// nil meaning "never".
type Page struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	URL              string      `json:"url"`
	ChangeThreshold  int         `json:"changeThreshold"`
	IgnoreNumbers    bool        `json:"ignoreNumbers"`
	ContentMode      ContentMode `json:"contentMode,omitempty"`
	ScanRateMinutes  int         `json:"scanRateMinutes"`
	LastAutoscanTime *int64      `json:"lastAutoscanTime"`
	OldScanTime      *int64      `json:"oldScanTime"`
	NewScanTime      *int64      `json:"newScanTime"`
	State            PageState   `json:"state"`
	ErrorMessage     string      `json:"errorMessage,omitempty"`
}

func NewPage(id, title, url string) *Page {
	return &Page{
		ID:              id,
		Title:           title,
		URL:             url,
		ChangeThreshold: DefaultChangeThreshold,
		ContentMode:     ContentText,
		State:           StateInit,
	}
}

func (p *Page) IsChanged() bool {
	return p.State == StateChanged
}

func (p *Page) SetLastAutoscanTime(ms int64) {
	p.LastAutoscanTime = &ms
}

// Clone returns a copy that shares no pointers with p.
func (p *Page) Clone() *Page {
	c := *p
	c.LastAutoscanTime = cloneTime(p.LastAutoscanTime)
	c.OldScanTime = cloneTime(p.OldScanTime)
	c.NewScanTime = cloneTime(p.NewScanTime)
	return &c
}

func cloneTime(t *int64) *int64 {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// PageFolder groups pages and other folders. Children holds ids in display order.
type PageFolder struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Children []string `json:"children"`
}

// TimingUpdate is the new autoscan bookkeeping for one page.
type TimingUpdate struct {
	PageID           string
	LastAutoscanTime int64
}
