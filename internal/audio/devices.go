// internal/audio/devices.go
package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gen2brain/malgo"
)

// Device describes one playback or capture endpoint.
type Device struct {
	Index   int
	Name    string
	Kind    string
	Default bool
}

// ListDevices enumerates playback and capture devices.
func ListDevices() ([]Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	defer func() { _ = freeContext(&ctx) }()

	var out []Device
	for _, kind := range []struct {
		typ  malgo.DeviceType
		name string
	}{
		{malgo.Playback, "playback"},
		{malgo.Capture, "capture"},
	} {
		infos, err := ctx.Devices(kind.typ)
		if err != nil {
			return nil, fmt.Errorf("enumerate %s devices: %w", kind.name, err)
		}
		for i, info := range infos {
			out = append(out, Device{
				Index:   i,
				Name:    info.Name(),
				Kind:    kind.name,
				Default: info.IsDefault != 0,
			})
		}
	}
	return out, nil
}

func deviceID(ctx *malgo.AllocatedContext, typ malgo.DeviceType, index int) (malgo.DeviceID, error) {
	infos, err := ctx.Devices(typ)
	if err != nil {
		return malgo.DeviceID{}, fmt.Errorf("enumerate devices: %w", err)
	}
	if index >= len(infos) {
		return malgo.DeviceID{}, fmt.Errorf("device index %d out of range (have %d devices)", index, len(infos))
	}
	return infos[index].ID, nil
}

func freeContext(ctx **malgo.AllocatedContext) error {
	if *ctx == nil {
		return nil
	}
	err := (*ctx).Uninit()
	(*ctx).Free()
	*ctx = nil
	if err != nil {
		return fmt.Errorf("uninit context: %w", err)
	}
	return nil
}

// decodeFloat32 converts little-endian float32 bytes to samples.
// Trailing bytes that do not form a full sample are ignored.
func decodeFloat32(data []byte) []float32 {
	samples := make([]float32, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}

// encodeFloat32 writes samples into out as little-endian float32 and
// returns the number of samples written.
func encodeFloat32(out []byte, samples []float32) int {
	n := len(out) / 4
	if len(samples) < n {
		n = len(samples)
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(samples[i]))
	}
	return n
}
