// Package tui is a terminal host for the packing board. Bags are drawn as
// columns beside a list of catalog templates and master items; the mouse
// drives drag and drop, click-to-target and swipe-to-reveal.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/packing"
)

// Library lists what can be added to a trip.
type Library interface {
	Catalog(ctx context.Context, q string) ([]model.CatalogTemplate, error)
	ListMasterItems(ctx context.Context) ([]model.MasterItem, error)
}

// Trip is the trip the board edits. Undo and packed toggling are used when
// the implementation also satisfies packing.Undoer and packing.PackedSetter.
type Trip interface {
	packing.Operations
	packing.Source
}

// Options configures the terminal host.
type Options struct {
	Trip    Trip
	Library Library
	// Title is shown until the first snapshot arrives.
	Title  string
	Logger *slog.Logger
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// Timing of the host loop.
const (
	frameInterval = 33 * time.Millisecond
	flashDuration = 4 * time.Second
)
