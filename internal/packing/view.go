// Package packing is the packing board's view model: it groups a trip's flat
// item list into bags, categories and containers, and routes drag-and-drop,
// click-to-target and swipe interactions to the persistence operations.
package packing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/erazemk/packzen/internal/model"
)

// View is the grouped representation of one trip.
type View struct {
	// Bags in display order; the virtual "no bag" group is always last.
	Bags []BagGroup
	// Containers holds every container item by id, including empty ones.
	Containers map[string]*ContainerGroup
	Progress   Progress
}

// BagGroup is one bag column.
type BagGroup struct {
	// Bag is the zero value for the virtual group.
	Bag        model.Bag
	Virtual    bool
	Categories []CategoryGroup
	Progress   Progress
}

// ID returns the bag id, or nil for the virtual group.
func (g *BagGroup) ID() *string {
	if g.Virtual {
		return nil
	}
	return &g.Bag.ID
}

// Name returns the display name.
func (g *BagGroup) Name() string {
	if g.Virtual {
		return model.NoBagName
	}
	return g.Bag.Name
}

// Items returns the directly placed items across all categories.
func (g *BagGroup) Items() []model.TripItem {
	var out []model.TripItem
	for _, c := range g.Categories {
		out = append(out, c.Items...)
	}
	return out
}

// CategoryGroup is the items of one category within a bag.
type CategoryGroup struct {
	Name  string
	Icon  string
	Items []model.TripItem
}

// ContainerGroup is a container item and what it holds.
type ContainerGroup struct {
	Container model.TripItem
	Items     []model.TripItem
	// Count and Packed are the contained item counts used for progress.
	Count  int
	Packed int
}

// Progress counts items by packing state.
type Progress struct {
	Total   int
	Packed  int
	Skipped int
}

// Done reports how many items need no more attention.
func (p Progress) Done() int { return p.Packed + p.Skipped }

// Percent returns the done share in whole percent.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Done() * 100 / p.Total
}

func (p *Progress) add(it model.TripItem) {
	p.Total++
	switch {
	case it.Packed:
		p.Packed++
	case it.Skipped:
		p.Skipped++
	}
}

// BuildView groups items into bags, categories and containers.
//
// Directly placed items are grouped by bag (bags ordered by sort order, then
// name, with the virtual "no bag" group last) and then by category name
// (alphabetical, "Uncategorized" last). Items inside a container appear only
// under that container. An item pointing at a container that is not in the
// list is treated as directly placed so it never disappears.
func BuildView(items []model.TripItem, bags []model.Bag, categories []model.Category) View {
	v := View{Containers: make(map[string]*ContainerGroup)}

	catByID := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		catByID[c.ID] = c
	}

	for _, it := range items {
		if it.IsContainer {
			v.Containers[it.ID] = &ContainerGroup{Container: it}
		}
	}

	sortedBags := slices.Clone(bags)
	slices.SortStableFunc(sortedBags, func(a, b model.Bag) int {
		return cmp.Or(
			cmp.Compare(a.SortOrder, b.SortOrder),
			strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			strings.Compare(a.ID, b.ID),
		)
	})

	groups := make([]*bagBuilder, 0, len(sortedBags)+1)
	byBag := make(map[string]*bagBuilder, len(sortedBags))
	for _, b := range sortedBags {
		bb := &bagBuilder{group: BagGroup{Bag: b}, cats: make(map[string]*CategoryGroup)}
		groups = append(groups, bb)
		byBag[b.ID] = bb
	}
	virtual := &bagBuilder{group: BagGroup{Virtual: true}, cats: make(map[string]*CategoryGroup)}
	groups = append(groups, virtual)

	for _, it := range items {
		v.Progress.add(it)

		bb := virtual
		if it.BagID != nil {
			if found, ok := byBag[*it.BagID]; ok {
				bb = found
			}
		}
		bb.group.Progress.add(it)

		if it.ContainerItemID != nil {
			if cg, ok := v.Containers[*it.ContainerItemID]; ok && *it.ContainerItemID != it.ID {
				cg.Items = append(cg.Items, it)
				cg.Count++
				if it.Packed {
					cg.Packed++
				}
				continue
			}
		}

		cg := bb.category(categoryOf(it, catByID))
		cg.Items = append(cg.Items, it)
	}

	for _, cg := range v.Containers {
		sortItems(cg.Items)
	}
	for _, bb := range groups {
		v.Bags = append(v.Bags, bb.build())
	}
	return v
}

func categoryOf(it model.TripItem, byID map[string]model.Category) (name, icon string) {
	if it.CategoryName != "" {
		return it.CategoryName, it.CategoryIcon
	}
	if it.CategoryID != nil {
		if c, ok := byID[*it.CategoryID]; ok {
			return c.Name, c.Icon
		}
	}
	return model.UncategorizedName, ""
}

type bagBuilder struct {
	group BagGroup
	cats  map[string]*CategoryGroup
}

func (bb *bagBuilder) category(name, icon string) *CategoryGroup {
	cg, ok := bb.cats[name]
	if !ok {
		cg = &CategoryGroup{Name: name, Icon: icon}
		bb.cats[name] = cg
	}
	return cg
}

func (bb *bagBuilder) build() BagGroup {
	g := bb.group
	for _, cg := range bb.cats {
		sortItems(cg.Items)
		g.Categories = append(g.Categories, *cg)
	}
	slices.SortFunc(g.Categories, func(a, b CategoryGroup) int {
		au, bu := a.Name == model.UncategorizedName, b.Name == model.UncategorizedName
		switch {
		case au && !bu:
			return 1
		case bu && !au:
			return -1
		}
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			strings.Compare(a.Name, b.Name),
		)
	})
	return g
}

func sortItems(items []model.TripItem) {
	slices.SortFunc(items, func(a, b model.TripItem) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			strings.Compare(a.ID, b.ID),
		)
	})
}

// Bag returns the group for bagID; nil selects the virtual group.
func (v *View) Bag(bagID *string) *BagGroup {
	for i := range v.Bags {
		g := &v.Bags[i]
		if g.Virtual && bagID == nil {
			return g
		}
		if !g.Virtual && bagID != nil && g.Bag.ID == *bagID {
			return g
		}
	}
	return nil
}

// Placement is where an item shows up in a View.
type Placement struct {
	// BagID is the bag group the item is listed in (nil: virtual).
	BagID *string
	// ContainerID is set when the item is listed under a container.
	ContainerID string
	Category    string
}

// Locate finds the single place itemID is listed.
func (v *View) Locate(itemID string) (Placement, bool) {
	for id, cg := range v.Containers {
		for _, it := range cg.Items {
			if it.ID == itemID {
				return Placement{BagID: cg.Container.BagID, ContainerID: id}, true
			}
		}
	}
	for i := range v.Bags {
		g := &v.Bags[i]
		for _, c := range g.Categories {
			for _, it := range c.Items {
				if it.ID == itemID {
					return Placement{BagID: g.ID(), Category: c.Name}, true
				}
			}
		}
	}
	return Placement{}, false
}

// ContainersIn returns the containers placed directly in a bag group, in
// display order.
func (v *View) ContainersIn(g *BagGroup) []*ContainerGroup {
	var out []*ContainerGroup
	for _, it := range g.Items() {
		if cg, ok := v.Containers[it.ID]; ok {
			out = append(out, cg)
		}
	}
	return out
}
