package impex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/packzen/internal/model"
)

func ptr(s string) *string { return &s }

func TestReadCSV(t *testing.T) {
	in := `Name, Quantity, Bag, Container, is_container, packed, extra
Toiletry kit,,Carry-on,,yes,,
Toothbrush,1,Carry-on,Toiletry kit,,x,ignored
,3,,,,,
Socks,4,,,,no,
`
	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Row{Name: "Toiletry kit", Bag: "Carry-on", IsContainer: true}, rows[0])
	assert.Equal(t, Row{Name: "Toothbrush", Quantity: 1, Bag: "Carry-on", Container: "Toiletry kit", Packed: true}, rows[1])
	assert.Equal(t, Row{Name: "Socks", Quantity: 4}, rows[2])
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no name column", "title,quantity\nx,1\n", "name column"},
		{"bad quantity", "name,quantity\nx,many\n", "line 2: quantity"},
		{"negative quantity", "name,quantity\nx,-1\n", "negative"},
		{"bad bool", "name,packed\nx,maybe\n", "line 2: packed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCSVRoundTrip(t *testing.T) {
	rows := []Row{
		{Name: "Kit", Category: "Toiletries", Bag: "Carry-on", IsContainer: true},
		{Name: `Charger, "USB-C"`, Quantity: 2, Bag: "Carry-on", Container: "Kit", Notes: "line one\nline two"},
		{Name: "Hat", Skipped: true},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(Header, ",")+"\n"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestYAML(t *testing.T) {
	in := `items:
  - name: Passport
    category: Documents
    bag: Personal
  - name: "  "
  - name: Cube
    is_container: true
`
	rows, err := ReadYAML(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Passport", rows[0].Name)
	assert.True(t, rows[1].IsContainer)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, rows))
	again, err := ReadYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, again)

	_, err = ReadYAML(strings.NewReader("items:\n  - name: x\n    quantity: -2\n"))
	assert.Error(t, err)
}

func TestFromSnapshot(t *testing.T) {
	snap := &model.Snapshot{
		Trip: &model.Trip{ID: "t1", Name: "Trip"},
		Bags: []model.Bag{
			{ID: "b2", TripID: "t1", Name: "Checked", SortOrder: 1},
			{ID: "b1", TripID: "t1", Name: "Carry-on"},
		},
		Categories: []model.Category{{ID: "c1", Name: "Toiletries"}},
		Items: []model.TripItem{
			{ID: "i1", Name: "Socks", Quantity: 3},
			{ID: "i2", Name: "Kit", IsContainer: true, BagID: ptr("b1"), CategoryID: ptr("c1"), Quantity: 1},
			{ID: "i3", Name: "Toothbrush", BagID: ptr("b1"), ContainerItemID: ptr("i2"), CategoryID: ptr("c1"), Packed: true, Quantity: 1},
			{ID: "i4", Name: "Boots", BagID: ptr("b2"), Quantity: 1},
		},
	}

	rows := FromSnapshot(snap)
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"Kit", "Toothbrush", "Boots", "Socks"}, names)
	assert.Equal(t, Row{Name: "Toothbrush", Category: "Toiletries", Quantity: 1, Bag: "Carry-on", Container: "Kit", Packed: true}, rows[1])
	assert.Equal(t, "", rows[3].Bag)

	assert.Nil(t, FromSnapshot(nil))
}
