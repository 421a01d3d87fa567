package rerank

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_selectDevice(t *testing.T) {
	devices := []Device{
		{Name: "CUDA0", Index: 0},
		{Name: "CUDA1", Index: 1},
		{Name: "Vulkan0", Index: 2},
	}

	tests := []struct {
		name    string
		devices []Device
		index   int
		visible []int
		want    Selection
	}{
		{
			name:    "first device by default",
			devices: devices,
			index:   0,
			want: Selection{
				Available:    true,
				Count:        3,
				Selected:     0,
				SelectedName: "CUDA0",
				Devices:      devices,
			},
		},
		{
			name:    "explicit index",
			devices: devices,
			index:   1,
			want: Selection{
				Available:    true,
				Count:        3,
				Selected:     1,
				SelectedName: "CUDA1",
				Devices:      devices,
			},
		},
		{
			name:    "visible mask filters and reindexes",
			devices: devices,
			index:   0,
			visible: []int{2},
			want: Selection{
				Available:    true,
				Count:        1,
				Selected:     0,
				SelectedName: "Vulkan0",
				Devices:      []Device{{Name: "Vulkan0", Index: 2}},
			},
		},
		{
			name:    "index out of range falls back to cpu",
			devices: devices,
			index:   7,
			want: Selection{
				Available: true,
				Count:     3,
				Selected:  -1,
				Devices:   devices,
			},
		},
		{
			name:  "no devices means cpu",
			index: 0,
			want: Selection{
				Available: false,
				Count:     0,
				Selected:  -1,
			},
		},
		{
			name:    "mask hides everything",
			devices: devices,
			index:   0,
			visible: []int{9},
			want: Selection{
				Available: false,
				Count:     0,
				Selected:  -1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectDevice(tt.devices, tt.index, tt.visible)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("selection mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
