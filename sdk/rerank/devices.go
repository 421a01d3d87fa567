package rerank

import (
	"fmt"
	"slices"

	"github.com/hybridgroup/yzma/pkg/llama"
)

// maxProbeOrdinal bounds the per-backend device probe.
const maxProbeOrdinal = 16

// probePrefixes are the backend device name prefixes llama.cpp registers
// for indexed accelerators.
var probePrefixes = []string{"CUDA", "ROCm", "Vulkan", "SYCL"}

// Device represents an accelerator device registered with the backend.
type Device struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Selection describes the accelerators found on the system and which one,
// if any, the engine runs on. Selected is -1 when running on CPU.
type Selection struct {
	Available    bool
	Count        int
	Selected     int
	SelectedName string
	Devices      []Device
}

// ProbeDevices asks the backend for every accelerator it registered. The
// backend has no enumeration call so devices are found by name.
func ProbeDevices() []Device {
	var devices []Device

	for _, prefix := range probePrefixes {
		for i := range maxProbeOrdinal {
			name := fmt.Sprintf("%s%d", prefix, i)
			if llama.GGMLBackendDeviceByName(name) == 0 {
				break
			}

			devices = append(devices, Device{Name: name, Index: len(devices)})
		}
	}

	if llama.GGMLBackendDeviceByName("Metal") != 0 {
		devices = append(devices, Device{Name: "Metal", Index: len(devices)})
	}

	return devices
}

// selectDevice picks the device the engine will run on. The visible list
// filters the probed devices by ordinal before the index is applied. An
// index that lands outside the visible set falls back to CPU rather than
// failing, so the service still comes up on machines without the expected
// accelerator.
func selectDevice(devices []Device, index int, visible []int) Selection {
	filtered := devices
	if len(visible) > 0 {
		filtered = nil
		for _, ord := range visible {
			if ord >= 0 && ord < len(devices) {
				filtered = append(filtered, devices[ord])
			}
		}
	}

	sel := Selection{
		Available: len(filtered) > 0,
		Count:     len(filtered),
		Selected:  -1,
		Devices:   slices.Clone(filtered),
	}

	if !sel.Available {
		return sel
	}

	if index < 0 {
		index = 0
	}

	if index >= len(filtered) {
		return sel
	}

	sel.Selected = index
	sel.SelectedName = filtered[index].Name

	return sel
}
