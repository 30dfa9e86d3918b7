package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erazemk/packzen/internal/model"
)

// Trip is a client bound to one trip. It implements packing.Operations,
// packing.Source, packing.Undoer and packing.PackedSetter.
type Trip struct {
	c  *Client
	id string
}

// ID returns the trip id.
func (t *Trip) ID() string { return t.id }

func (t *Trip) path(format string, args ...any) string {
	return "/trips/" + url.PathEscape(t.id) + fmt.Sprintf(format, args...)
}

// Snapshot loads the trip with its bags, categories and items.
func (t *Trip) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := t.c.do(ctx, http.MethodGet, t.path("/snapshot"), nil, &snap); err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &snap, nil
}

// ListBags returns the trip's bags.
func (t *Trip) ListBags(ctx context.Context) ([]model.Bag, error) {
	var bags []model.Bag
	if err := t.c.do(ctx, http.MethodGet, t.path("/bags"), nil, &bags); err != nil {
		return nil, fmt.Errorf("list bags: %w", err)
	}
	return bags, nil
}

// CreateBag adds a bag to the trip.
func (t *Trip) CreateBag(ctx context.Context, name, bagType, color string) (*model.Bag, error) {
	var bag model.Bag
	err := t.c.do(ctx, http.MethodPost, t.path("/bags"), map[string]string{
		"name":  name,
		"type":  bagType,
		"color": color,
	}, &bag)
	if err != nil {
		return nil, fmt.Errorf("create bag: %w", err)
	}
	return &bag, nil
}

// NewItem is the body for CreateItem.
type NewItem struct {
	Name            string  `json:"name"`
	Notes           string  `json:"notes,omitempty"`
	Quantity        int     `json:"quantity,omitempty"`
	Packed          bool    `json:"packed"`
	Skipped         bool    `json:"skipped"`
	IsContainer     bool    `json:"is_container"`
	CategoryID      *string `json:"category_id,omitempty"`
	BagID           *string `json:"bag_id,omitempty"`
	ContainerItemID *string `json:"container_item_id,omitempty"`
}

// CreateItem adds a free-form item to the trip.
func (t *Trip) CreateItem(ctx context.Context, in NewItem) (*model.TripItem, error) {
	var it model.TripItem
	if err := t.c.do(ctx, http.MethodPost, t.path("/items"), in, &it); err != nil {
		return nil, fmt.Errorf("create item %q: %w", in.Name, err)
	}
	return &it, nil
}

type moveRequest struct {
	BagID       *string `json:"bag_id"`
	ContainerID *string `json:"container_id"`
}

type moveResponse struct {
	Item *model.TripItem `json:"item"`
	Move *model.Move     `json:"move"`
}

func (t *Trip) move(ctx context.Context, itemID string, req moveRequest) (*model.Move, error) {
	var resp moveResponse
	if err := t.c.do(ctx, http.MethodPost, t.path("/items/%s/move", url.PathEscape(itemID)), req, &resp); err != nil {
		return nil, err
	}
	return resp.Move, nil
}

// MoveItemToBag moves an item out of any container into bagID (nil: no bag).
func (t *Trip) MoveItemToBag(ctx context.Context, itemID string, bagID *string) (*model.Move, error) {
	return t.move(ctx, itemID, moveRequest{BagID: bagID})
}

// MoveItemToContainer moves an item into a container.
func (t *Trip) MoveItemToContainer(ctx context.Context, itemID, containerID string) (*model.Move, error) {
	return t.move(ctx, itemID, moveRequest{ContainerID: &containerID})
}

// AddMasterItemToTrip adds a copy of a master item.
func (t *Trip) AddMasterItemToTrip(ctx context.Context, master model.MasterItem, bagID, containerID *string) (*model.TripItem, error) {
	var it model.TripItem
	err := t.c.do(ctx, http.MethodPost, t.path("/items/from-master"), map[string]any{
		"master_item_id": master.ID,
		"bag_id":         bagID,
		"container_id":   containerID,
	}, &it)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// AddCatalogTemplateToTrip adds an item from the built-in catalog.
func (t *Trip) AddCatalogTemplateToTrip(ctx context.Context, tmpl model.CatalogTemplate, bagID, containerID *string) (*model.TripItem, error) {
	var it model.TripItem
	err := t.c.do(ctx, http.MethodPost, t.path("/items/from-catalog"), map[string]any{
		"template_id":  tmpl.ID,
		"bag_id":       bagID,
		"container_id": containerID,
	}, &it)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// RemoveItemFromTrip deletes an item.
func (t *Trip) RemoveItemFromTrip(ctx context.Context, itemID string) error {
	return t.c.do(ctx, http.MethodDelete, t.path("/items/%s", url.PathEscape(itemID)), nil, nil)
}

// SetPacked updates an item's packed flag, keeping its other fields.
func (t *Trip) SetPacked(ctx context.Context, it model.TripItem, packed bool) (*model.TripItem, error) {
	var updated model.TripItem
	err := t.c.do(ctx, http.MethodPut, t.path("/items/%s", url.PathEscape(it.ID)), map[string]any{
		"name":         it.Name,
		"notes":        it.Notes,
		"quantity":     it.Quantity,
		"packed":       packed,
		"skipped":      it.Skipped && !packed,
		"is_container": it.IsContainer,
		"category_id":  it.CategoryID,
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListMoves returns the trip's move history, newest first.
func (t *Trip) ListMoves(ctx context.Context, limit int) ([]model.Move, error) {
	path := t.path("/moves")
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var moves []model.Move
	if err := t.c.do(ctx, http.MethodGet, path, nil, &moves); err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	return moves, nil
}

// UndoMove reverts a recorded move.
func (t *Trip) UndoMove(ctx context.Context, moveID string) (*model.TripItem, error) {
	var it model.TripItem
	if err := t.c.do(ctx, http.MethodPost, t.path("/moves/%s/undo", url.PathEscape(moveID)), nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}
