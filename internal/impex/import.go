package impex

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/packzen/internal/model"
)

// ImportConcurrency bounds the number of in-flight item creations.
const ImportConcurrency = 8

// Item is one item to create in the destination trip.
type Item struct {
	Name        string
	Notes       string
	Quantity    int
	IsContainer bool
	Packed      bool
	Skipped     bool
	CategoryID  *string
	BagID       *string
	ContainerID *string
}

// Destination is the trip an import writes into.
type Destination interface {
	Snapshot(ctx context.Context) (*model.Snapshot, error)
	CreateBag(ctx context.Context, name string) (*model.Bag, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	CreateItem(ctx context.Context, it Item) (*model.TripItem, error)
}

// RowError records a row that could not be imported.
type RowError struct {
	Index int
	Name  string
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Index+1, e.Name, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Report summarizes an import.
type Report struct {
	Created int
	Failed  int
	Errors  []RowError
}

// Importer loads rows into a destination trip.
type Importer struct {
	dest Destination
	log  *slog.Logger

	mu         sync.Mutex
	report     Report
	bags       map[string]*model.Bag
	categories map[string]*model.Category
	containers map[containerKey]string
}

type containerKey struct {
	bag  string
	name string
}

// NewImporter creates an importer writing into dest.
func NewImporter(dest Destination, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{dest: dest, log: logger.With("component", "import")}
}

func key(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Import creates the rows in the destination. Missing bags and categories
// are created first, then containers, then everything else. Individual
// failures are recorded in the report; only context cancellation or a
// failure to load the destination aborts the import.
func (im *Importer) Import(ctx context.Context, rows []Row) (Report, error) {
	im.report = Report{}
	snap, err := im.dest.Snapshot(ctx)
	if err != nil {
		return im.report, fmt.Errorf("load destination: %w", err)
	}
	im.index(snap)

	if err := im.ensureRefs(ctx, rows); err != nil {
		return im.report, err
	}

	var containers, rest []int
	for i, r := range rows {
		if r.IsContainer {
			containers = append(containers, i)
		} else {
			rest = append(rest, i)
		}
	}
	if err := im.phase(ctx, rows, containers); err != nil {
		return im.report, err
	}
	if err := im.phase(ctx, rows, rest); err != nil {
		return im.report, err
	}

	slices.SortFunc(im.report.Errors, func(a, b RowError) int { return cmp.Compare(a.Index, b.Index) })
	im.log.Info("import finished",
		slog.Int("created", im.report.Created),
		slog.Int("failed", im.report.Failed),
	)
	return im.report, nil
}

func (im *Importer) index(snap *model.Snapshot) {
	im.bags = make(map[string]*model.Bag, len(snap.Bags))
	for i := range snap.Bags {
		im.bags[key(snap.Bags[i].Name)] = &snap.Bags[i]
	}
	im.categories = make(map[string]*model.Category, len(snap.Categories))
	for i := range snap.Categories {
		im.categories[key(snap.Categories[i].Name)] = &snap.Categories[i]
	}
	im.containers = make(map[containerKey]string)
	bagName := make(map[string]string, len(snap.Bags))
	for _, b := range snap.Bags {
		bagName[b.ID] = key(b.Name)
	}
	for _, it := range snap.Items {
		if !it.IsContainer {
			continue
		}
		k := containerKey{name: key(it.Name)}
		if it.BagID != nil {
			k.bag = bagName[*it.BagID]
		}
		im.containers[k] = it.ID
	}
}

// ensureRefs creates the bags and categories the rows name. They are few
// and shared by many rows, so they are created sequentially.
func (im *Importer) ensureRefs(ctx context.Context, rows []Row) error {
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if k := key(r.Bag); k != "" && im.bags[k] == nil {
			b, err := im.dest.CreateBag(ctx, strings.TrimSpace(r.Bag))
			if err != nil {
				return fmt.Errorf("create bag %q: %w", r.Bag, err)
			}
			im.bags[k] = b
		}
		if k := key(r.Category); k != "" && im.categories[k] == nil {
			c, err := im.dest.CreateCategory(ctx, strings.TrimSpace(r.Category))
			if err != nil {
				return fmt.Errorf("create category %q: %w", r.Category, err)
			}
			im.categories[k] = c
		}
	}
	return nil
}

func (im *Importer) phase(ctx context.Context, rows []Row, idx []int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ImportConcurrency)
	for _, i := range idx {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			im.create(gctx, i, rows[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (im *Importer) create(ctx context.Context, i int, r Row) {
	it := Item{
		Name:        r.Name,
		Notes:       r.Notes,
		Quantity:    max(r.Quantity, 1),
		IsContainer: r.IsContainer,
		Packed:      r.Packed,
		Skipped:     r.Skipped && !r.Packed,
	}

	im.mu.Lock()
	if b := im.bags[key(r.Bag)]; b != nil {
		it.BagID = &b.ID
	}
	if c := im.categories[key(r.Category)]; c != nil {
		it.CategoryID = &c.ID
	}
	var missing bool
	if r.Container != "" && !r.IsContainer {
		id, ok := im.containers[containerKey{bag: key(r.Bag), name: key(r.Container)}]
		if ok {
			it.ContainerID = &id
		}
		missing = !ok
	}
	im.mu.Unlock()

	if missing {
		im.log.Warn("container not found, placing item directly in bag",
			slog.String("item", r.Name),
			slog.String("container", r.Container),
		)
	}

	created, err := im.dest.CreateItem(ctx, it)

	im.mu.Lock()
	defer im.mu.Unlock()
	if err != nil {
		im.report.Failed++
		im.report.Errors = append(im.report.Errors, RowError{Index: i, Name: r.Name, Err: err})
		im.log.Warn("import row failed", slog.String("item", r.Name), slog.Any("error", err))
		return
	}
	im.report.Created++
	if created.IsContainer {
		im.containers[containerKey{bag: key(r.Bag), name: key(r.Name)}] = created.ID
	}
}
