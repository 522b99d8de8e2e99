package dicomio

import "testing"

func TestMetadata_ZPositionPriority(t *testing.T) {
	loc := 55.5
	num := 7

	tests := []struct {
		name     string
		meta     Metadata
		wantZ    float64
		resolved bool
	}{
		{
			name: "image position wins over everything",
			meta: Metadata{
				ImagePosition:  []float64{1, 2, -120.25},
				SliceLocation:  &loc,
				InstanceNumber: &num,
			},
			wantZ:    -120.25,
			resolved: true,
		},
		{
			name: "malformed image position falls through",
			meta: Metadata{
				ImagePosition: []float64{1, 2},
				SliceLocation: &loc,
			},
			wantZ:    55.5,
			resolved: true,
		},
		{
			name:     "slice location before instance number",
			meta:     Metadata{SliceLocation: &loc, InstanceNumber: &num},
			wantZ:    55.5,
			resolved: true,
		},
		{
			name:     "instance number as last resort",
			meta:     Metadata{InstanceNumber: &num},
			wantZ:    7,
			resolved: true,
		},
		{
			name:     "nothing resolves",
			meta:     Metadata{},
			wantZ:    0,
			resolved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, ok := tt.meta.ZPosition()
			if z != tt.wantZ || ok != tt.resolved {
				t.Errorf("ZPosition() = (%v, %v), want (%v, %v)", z, ok, tt.wantZ, tt.resolved)
			}
		})
	}
}

func TestValueFloats(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []float64
		ok    bool
	}{
		{"decimal strings", []string{"1.5", " -2 "}, []float64{1.5, -2}, true},
		{"scientific notation", []string{"3.7e+08"}, []float64{3.7e8}, true},
		{"ints", []int{4, 5}, []float64{4, 5}, true},
		{"floats", []float64{0.25}, []float64{0.25}, true},
		{"unparseable string", []string{"abc"}, nil, false},
		{"unsupported kind", [][]byte{{1}}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := valueFloats(tt.value)
			if ok != tt.ok {
				t.Fatalf("valueFloats ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("valueFloats = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("valueFloats[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
