package autoscan

import (
	"testing"
	"time"
	"updatescan/internal/models"

	"github.com/stretchr/testify/assert"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func page(id string, rate int, last *time.Time) *models.Page {
	p := models.NewPage(id, id, "https://"+id+".example.com")
	p.ScanRateMinutes = rate
	if last != nil {
		p.SetLastAutoscanTime(last.UnixMilli())
	}
	return p
}

func TestIsAutoscanPending_NeverScannedIsAlwaysDue(t *testing.T) {
	p := page("a", 15, nil)
	for _, now := range []time.Time{time.UnixMilli(0), t0, t0.Add(-time.Hour)} {
		assert.True(t, IsAutoscanPending(p, now))
	}
}

func TestIsAutoscanPending_DisabledIsNeverDue(t *testing.T) {
	assert.False(t, IsAutoscanPending(page("a", 0, nil), t0))
	assert.False(t, IsAutoscanPending(page("b", 0, &t0), t0.Add(1000*time.Hour)))
}

func TestIsAutoscanPending_BoundaryIsDue(t *testing.T) {
	p := page("a", 15, &t0)

	assert.True(t, IsAutoscanPending(p, t0.Add(15*time.Minute)))
	assert.False(t, IsAutoscanPending(p, t0.Add(15*time.Minute-time.Millisecond)))
}

func TestDueBatch_MixedRates(t *testing.T) {
	fast, slow := page("fast", 15, &t0), page("slow", 30, &t0)

	batch, updates := DueBatch([]*models.Page{fast, slow}, t0.Add(20*time.Minute))

	assert.Equal(t, []*models.Page{fast}, batch)
	assert.Equal(t, []models.TimingUpdate{{PageID: "fast", LastAutoscanTime: t0.Add(20 * time.Minute).UnixMilli()}}, updates)
	assert.Equal(t, t0.UnixMilli(), *slow.LastAutoscanTime)
	assert.Equal(t, t0.UnixMilli(), *fast.LastAutoscanTime, "DueBatch must not modify pages")
}

func TestDueBatch_KeepsInputOrder(t *testing.T) {
	pages := []*models.Page{page("c", 5, nil), page("x", 0, nil), page("a", 5, nil), page("b", 5, nil)}

	batch, _ := DueBatch(pages, t0)

	ids := make([]string, 0, len(batch))
	for _, p := range batch {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestDueBatch_Empty(t *testing.T) {
	batch, updates := DueBatch(nil, t0)
	assert.Empty(t, batch)
	assert.Empty(t, updates)
}
