package manager

import "testing"

func TestParseItemText(t *testing.T) {
	tests := []struct {
		raw      string
		name     string
		quantity int64
	}{
		{"milk", "milk", 1},
		{"milk 2", "milk", 2},
		{"milk x2", "milk", 2},
		{"olive oil 3", "olive oil", 3},
		{"olive oil x12", "olive oil", 12},
		{"2", "2", 1},
		{"x2", "x2", 1},
		{"milk 0", "milk 0", 1},
		{"milk x0", "milk x0", 1},
		{"milk -2", "milk -2", 1},
		{"milk two", "milk two", 1},
		{"  milk   2  ", "milk", 2},
		{"", "", 1},
	}

	for _, tt := range tests {
		name, quantity := ParseItemText(tt.raw)
		if name != tt.name || quantity != tt.quantity {
			t.Errorf("ParseItemText(%q) = (%q, %d), want (%q, %d)",
				tt.raw, name, quantity, tt.name, tt.quantity)
		}
	}
}
