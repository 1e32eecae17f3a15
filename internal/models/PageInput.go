package models

import "github.com/gookit/validate"

// PageInput is the payload for adding a tracked page.
type PageInput struct {
	Title           string `json:"title" validate:"required|maxLen:256"`
	URL             string `json:"url" validate:"required|fullUrl"`
	ScanRateMinutes int    `json:"scanRateMinutes" validate:"min:0"`
	ChangeThreshold *int   `json:"changeThreshold"`
	IgnoreNumbers   bool   `json:"ignoreNumbers"`
	ContentMode     string `json:"contentMode" validate:"in:text,article"`
	Parent          string `json:"parent"`
}

func (p *PageInput) Validate() error {
	v := validate.Struct(p)
	if !v.Validate() {
		return v.Errors
	}
	return nil
}

// PageContent pairs a page with its last two stored snapshots.
type PageContent struct {
	Page *Page  `json:"page"`
	Old  string `json:"old"`
	New  string `json:"new"`
}
