package dmf

import (
	"errors"
	"fmt"
	"sort"
)

var ErrWidth = errors.New("row width mismatch")

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

// A Matrix maps each key to a fixed-width row. Keys drives every iteration;
// Rows is only used for lookup.
type Matrix struct {
	Keys  []string
	Width int
	Rows  map[string][]float64
}

func NewMatrix(keys []string, width int) Matrix {
	m := Matrix{
		Keys:  append([]string{}, keys...),
		Width: width,
		Rows:  make(map[string][]float64, len(keys)),
	}
	for _, k := range m.Keys {
		m.Rows[k] = make([]float64, width)
	}
	return m
}

func (m Matrix) Inc(key string, idx int) {
	m.Rows[key][idx]++
}

func (m Matrix) Sum() float64 {
	var sum float64
	for _, k := range m.Keys {
		for _, v := range m.Rows[k] {
			sum += v
		}
	}
	return sum
}

// Col appends column j, in key order, to buf.
func (m Matrix) Col(j int, buf []float64) []float64 {
	for _, k := range m.Keys {
		buf = append(buf, m.Rows[k][j])
	}
	return buf
}

func (m Matrix) SetCol(j int, col []float64) {
	for i, k := range m.Keys {
		m.Rows[k][j] = col[i]
	}
}

func (m Matrix) Copy() Matrix {
	out := Matrix{
		Keys:  append([]string{}, m.Keys...),
		Width: m.Width,
		Rows:  make(map[string][]float64, len(m.Rows)),
	}
	for k, row := range m.Rows {
		out.Rows[k] = append([]float64{}, row...)
	}
	return out
}

func (m Matrix) SortedKeys() []string {
	keys := append([]string{}, m.Keys...)
	sort.Strings(keys)
	return keys
}

// Flatten concatenates the rows in sorted key order.
func (m Matrix) Flatten() []float64 {
	out := make([]float64, 0, len(m.Keys)*m.Width)
	for _, k := range m.SortedKeys() {
		out = append(out, m.Rows[k]...)
	}
	return out
}

// AddRow appends a new key; the first row added to an empty matrix sets Width.
func (m *Matrix) AddRow(key string, row []float64) error {
	if m.Rows == nil {
		m.Rows = map[string][]float64{}
	}
	if len(m.Keys) == 0 && m.Width == 0 {
		m.Width = len(row)
	}
	if len(row) != m.Width {
		return fmt.Errorf("AddRow: key %v: len(row) %v != width %v: %w", key, len(row), m.Width, ErrWidth)
	}
	if _, ok := m.Rows[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Rows[key] = row
	return nil
}
