// Package impex reads and writes packing lists as CSV or YAML and imports
// them into a trip.
package impex

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/packzen/internal/model"
	"github.com/erazemk/packzen/internal/packing"
)

// Header is the CSV column order.
var Header = []string{"name", "category", "quantity", "bag", "container", "is_container", "packed", "skipped", "notes"}

// Row is one item of a packing list. Bag and Container refer to bags and
// container items by name.
type Row struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category,omitempty"`
	Quantity    int    `yaml:"quantity,omitempty"`
	Bag         string `yaml:"bag,omitempty"`
	Container   string `yaml:"container,omitempty"`
	IsContainer bool   `yaml:"is_container,omitempty"`
	Packed      bool   `yaml:"packed,omitempty"`
	Skipped     bool   `yaml:"skipped,omitempty"`
	Notes       string `yaml:"notes,omitempty"`
}

// ErrBadHeader is returned when a CSV file lacks the name column.
var ErrBadHeader = errors.New("csv header must include a name column")

// ReadCSV parses a CSV packing list. The first record is the header;
// columns may appear in any order and unknown columns are ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["name"]; !ok {
		return nil, ErrBadHeader
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if get("name") == "" {
			continue
		}

		row := Row{
			Name:      get("name"),
			Category:  get("category"),
			Bag:       get("bag"),
			Container: get("container"),
			Notes:     get("notes"),
		}
		if row.Quantity, err = parseInt(get("quantity")); err != nil {
			return nil, fmt.Errorf("line %d: quantity: %w", line, err)
		}
		for name, dst := range map[string]*bool{
			"is_container": &row.IsContainer,
			"packed":       &row.Packed,
			"skipped":      &row.Skipped,
		} {
			if *dst, err = parseBool(get(name)); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, name, err)
			}
		}
		rows = append(rows, row)
	}
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "no", "n", "false":
		return false, nil
	case "1", "yes", "y", "true", "x":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		qty := ""
		if r.Quantity > 0 {
			qty = strconv.Itoa(r.Quantity)
		}
		rec := []string{
			r.Name, r.Category, qty, r.Bag, r.Container,
			strconv.FormatBool(r.IsContainer),
			strconv.FormatBool(r.Packed),
			strconv.FormatBool(r.Skipped),
			r.Notes,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type yamlDoc struct {
	Items []Row `yaml:"items"`
}

// ReadYAML parses a YAML packing list of the form "items: [...]".
func ReadYAML(r io.Reader) ([]Row, error) {
	var doc yamlDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	rows := doc.Items[:0]
	for _, row := range doc.Items {
		row.Name = strings.TrimSpace(row.Name)
		if row.Name == "" {
			continue
		}
		if row.Quantity < 0 {
			return nil, fmt.Errorf("%q: negative quantity", row.Name)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteYAML writes rows as a YAML document.
func WriteYAML(w io.Writer, rows []Row) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlDoc{Items: rows}); err != nil {
		return err
	}
	return enc.Close()
}

// FromSnapshot flattens a trip into rows in board order: bags by sort
// order, categories alphabetically, each container followed by its
// contents.
func FromSnapshot(snap *model.Snapshot) []Row {
	if snap == nil {
		return nil
	}
	view := packing.BuildView(snap.Items, snap.Bags, snap.Categories)

	catName := make(map[string]string, len(snap.Categories))
	for _, c := range snap.Categories {
		catName[c.ID] = c.Name
	}
	category := func(it model.TripItem) string {
		if it.CategoryName != "" {
			return it.CategoryName
		}
		if it.CategoryID != nil {
			return catName[*it.CategoryID]
		}
		return ""
	}

	var rows []Row
	row := func(it model.TripItem, bag, container string) Row {
		return Row{
			Name:        it.Name,
			Category:    category(it),
			Quantity:    it.Quantity,
			Bag:         bag,
			Container:   container,
			IsContainer: it.IsContainer,
			Packed:      it.Packed,
			Skipped:     it.Skipped,
			Notes:       it.Notes,
		}
	}
	for _, g := range view.Bags {
		bag := ""
		if !g.Virtual {
			bag = g.Bag.Name
		}
		for _, cg := range g.Categories {
			for _, it := range cg.Items {
				rows = append(rows, row(it, bag, ""))
				if c, ok := view.Containers[it.ID]; ok {
					for _, child := range c.Items {
						rows = append(rows, row(child, bag, it.Name))
					}
				}
			}
		}
	}
	return rows
}
