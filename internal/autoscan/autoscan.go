// Package autoscan decides which tracked pages are due for a scan, runs the
// scan on a recurring alarm and notifies about new changes.
package autoscan

import (
	"time"
	"updatescan/internal/models"
)

// AlarmID is the name of the recurring alarm owned by the scheduler.
const AlarmID = "updatescanner-autoscan"

const msPerMinute = 60 * 1000

// IsAutoscanPending reports whether page is due at now. A scan rate of zero
// disables autoscanning and a page that was never autoscanned is always due.
func IsAutoscanPending(page *models.Page, now time.Time) bool {
	if page.ScanRateMinutes <= 0 {
		return false
	}
	if page.LastAutoscanTime == nil {
		return true
	}
	elapsed := now.UnixMilli() - *page.LastAutoscanTime
	return elapsed >= int64(page.ScanRateMinutes)*msPerMinute
}

// DueBatch selects the due pages in input order and the timing updates that
// record the attempt. Pages are not modified.
func DueBatch(pages []*models.Page, now time.Time) ([]*models.Page, []models.TimingUpdate) {
	var (
		batch   []*models.Page
		updates []models.TimingUpdate
	)
	ms := now.UnixMilli()
	for _, page := range pages {
		if !IsAutoscanPending(page, now) {
			continue
		}
		batch = append(batch, page)
		updates = append(updates, models.TimingUpdate{PageID: page.ID, LastAutoscanTime: ms})
	}
	return batch, updates
}
