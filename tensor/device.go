package tensor

import "strconv"

type deviceKind int

const (
	deviceCPU deviceKind = iota
	deviceCUDA
)

// Device is a tensor placement. In this host-side library the device is
// carried as checkpoint metadata; no accelerator memory is involved,
// but placement still participates in comparison semantics.
type Device struct {
	kind  deviceKind
	index int
}

// CPU is the host placement.
var CPU = Device{kind: deviceCPU}

// CUDA returns the placement for the given accelerator index.
func CUDA(index int) Device {
	return Device{kind: deviceCUDA, index: index}
}

// IsCPU reports whether the device is the host placement.
func (d Device) IsCPU() bool {
	return d.kind == deviceCPU
}

// String returns the torch-style device string, e.g. "cpu" or "cuda:1".
func (d Device) String() string {
	if d.kind == deviceCPU {
		return "cpu"
	}
	return "cuda:" + strconv.Itoa(d.index)
}

// ParseDevice parses a torch-style device string.
func ParseDevice(s string) (Device, bool) {
	if s == "cpu" {
		return CPU, true
	}
	const prefix = "cuda:"
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		idx, err := strconv.Atoi(s[len(prefix):])
		if err != nil || idx < 0 {
			return Device{}, false
		}
		return CUDA(idx), true
	}
	return Device{}, false
}
