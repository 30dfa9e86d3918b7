package impex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/packzen/internal/model"
)

var errRefused = errors.New("refused")

type memDest struct {
	mu         sync.Mutex
	snap       model.Snapshot
	seq        int
	inFlight   atomic.Int32
	peak       atomic.Int32
	delay      time.Duration
	snapErr    error
	orderError string
}

func (d *memDest) next(prefix string) string {
	d.seq++
	return fmt.Sprintf("%s%d", prefix, d.seq)
}

func (d *memDest) Snapshot(context.Context) (*model.Snapshot, error) {
	if d.snapErr != nil {
		return nil, d.snapErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.snap
	return &s, nil
}

func (d *memDest) CreateBag(_ context.Context, name string) (*model.Bag, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := model.Bag{ID: d.next("b"), Name: name}
	d.snap.Bags = append(d.snap.Bags, b)
	return &b, nil
}

func (d *memDest) CreateCategory(_ context.Context, name string) (*model.Category, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := model.Category{ID: d.next("c"), Name: name}
	d.snap.Categories = append(d.snap.Categories, c)
	return &c, nil
}

func (d *memDest) CreateItem(_ context.Context, in Item) (*model.TripItem, error) {
	n := d.inFlight.Add(1)
	defer d.inFlight.Add(-1)
	for {
		p := d.peak.Load()
		if n <= p || d.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(d.delay)

	if strings.HasPrefix(in.Name, "fail") {
		return nil, errRefused
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if in.ContainerID != nil {
		found := false
		for _, it := range d.snap.Items {
			found = found || (it.ID == *in.ContainerID && it.IsContainer)
		}
		if !found {
			d.orderError = in.Name + " created before its container"
		}
	}
	it := model.TripItem{
		ID:              d.next("i"),
		Name:            in.Name,
		Quantity:        in.Quantity,
		IsContainer:     in.IsContainer,
		Packed:          in.Packed,
		Skipped:         in.Skipped,
		CategoryID:      in.CategoryID,
		BagID:           in.BagID,
		ContainerItemID: in.ContainerID,
	}
	d.snap.Items = append(d.snap.Items, it)
	return &it, nil
}

func (d *memDest) item(name string) *model.TripItem {
	for i := range d.snap.Items {
		if d.snap.Items[i].Name == name {
			return &d.snap.Items[i]
		}
	}
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestImport(t *testing.T) {
	dest := &memDest{snap: model.Snapshot{
		Bags:       []model.Bag{{ID: "existing", Name: "Carry-on"}},
		Categories: []model.Category{{ID: "cat-doc", Name: "Documents"}},
	}}
	rows := []Row{
		{Name: "Toothbrush", Category: "Toiletries", Bag: "carry-on", Container: "Kit"},
		{Name: "Passport", Category: "documents", Bag: "Carry-on"},
		{Name: "Kit", Bag: "Carry-on", IsContainer: true},
		{Name: "Boots", Bag: "Checked", Quantity: 2},
		{Name: "Scarf", Container: "Nowhere"},
		{Name: "Sandals", Packed: true, Skipped: true},
	}

	report, err := NewImporter(dest, discard()).Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 6}, report)
	assert.Empty(t, dest.orderError)

	require.Len(t, dest.snap.Bags, 2, "only the missing bag is created")
	require.Len(t, dest.snap.Categories, 2, "only the missing category is created")

	brush := dest.item("Toothbrush")
	require.NotNil(t, brush)
	require.NotNil(t, brush.ContainerItemID)
	assert.Equal(t, dest.item("Kit").ID, *brush.ContainerItemID)
	assert.Equal(t, "existing", *brush.BagID)
	assert.Equal(t, 1, brush.Quantity)

	assert.Equal(t, "cat-doc", *dest.item("Passport").CategoryID)
	assert.Equal(t, 2, dest.item("Boots").Quantity)
	assert.Nil(t, dest.item("Scarf").ContainerItemID)

	sandals := dest.item("Sandals")
	assert.True(t, sandals.Packed)
	assert.False(t, sandals.Skipped)
}

func TestImportUsesExistingContainer(t *testing.T) {
	dest := &memDest{snap: model.Snapshot{
		Bags:  []model.Bag{{ID: "b", Name: "Duffel"}},
		Items: []model.TripItem{{ID: "cube", Name: "Cube", IsContainer: true, BagID: ptr("b")}},
	}}
	_, err := NewImporter(dest, discard()).Import(context.Background(), []Row{
		{Name: "Shirt", Bag: "Duffel", Container: "cube"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cube", *dest.item("Shirt").ContainerItemID)
}

func TestImportCollectsFailures(t *testing.T) {
	dest := &memDest{}
	var rows []Row
	for i := range 20 {
		name := fmt.Sprintf("item %d", i)
		if i%5 == 0 {
			name = fmt.Sprintf("fail %d", i)
		}
		rows = append(rows, Row{Name: name})
	}

	report, err := NewImporter(dest, discard()).Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 16, report.Created)
	assert.Equal(t, 4, report.Failed)
	require.Len(t, report.Errors, 4)
	for i, e := range report.Errors {
		assert.Equal(t, i*5, e.Index)
		assert.ErrorIs(t, e, errRefused)
	}
	assert.Contains(t, report.Errors[1].Error(), "row 6 (fail 5)")
}

func TestImportConcurrencyLimit(t *testing.T) {
	dest := &memDest{delay: 5 * time.Millisecond}
	rows := make([]Row, 40)
	for i := range rows {
		rows[i] = Row{Name: fmt.Sprintf("item %d", i)}
	}

	report, err := NewImporter(dest, discard()).Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 40, report.Created)
	assert.LessOrEqual(t, dest.peak.Load(), int32(ImportConcurrency))
	assert.Greater(t, dest.peak.Load(), int32(1))
}

func TestImportAborts(t *testing.T) {
	dest := &memDest{snapErr: errRefused}
	_, err := NewImporter(dest, discard()).Import(context.Background(), []Row{{Name: "x"}})
	assert.ErrorIs(t, err, errRefused)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewImporter(&memDest{}, discard()).Import(ctx, []Row{{Name: "x"}})
	assert.ErrorIs(t, err, context.Canceled)
}
