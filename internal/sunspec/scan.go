package sunspec

import (
	"fmt"
)

// SunSpec well-known constants.
const (
	markerHigh = 0x5375 // "Su"
	markerLow  = 0x6e53 // "nS"

	endModelID = 0xFFFF

	// maxReadQuantity stays under the Modbus FC3 125-register ceiling.
	maxReadQuantity = 100
)

// baseAddresses are probed in order for the "SunS" marker.
var baseAddresses = []uint16{40000, 50000, 0}

// Well-known model identifiers.
const (
	ModelCommon uint16 = 1
	ModelMPPT   uint16 = 160
)

// registerReader is the single transport call the scanner and model blocks
// need. Satisfied by goburrow's modbus.Client; tests use an in-memory map.
type registerReader interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// modelRegion locates one model's payload in the register map.
type modelRegion struct {
	addr   uint16 // first payload register
	length uint16 // payload length in registers
}

// scanModels probes the well-known base addresses for the SunSpec marker and
// walks the model chain, returning model id -> payload region. When a model id
// repeats, the first occurrence wins.
func scanModels(r registerReader) (map[uint16]modelRegion, error) {
	for _, base := range baseAddresses {
		data, err := r.ReadHoldingRegisters(base, 2)
		if err != nil || len(data) < 4 {
			continue
		}
		if u16At(data, 0) != markerHigh || u16At(data, 1) != markerLow {
			continue
		}
		return walkModelChain(r, base+2)
	}
	return nil, ErrNoDevice
}

// walkModelChain reads (id, length) headers starting at addr until the end
// marker, recording each model's payload region.
func walkModelChain(r registerReader, addr uint16) (map[uint16]modelRegion, error) {
	models := make(map[uint16]modelRegion)
	for {
		data, err := r.ReadHoldingRegisters(addr, 2)
		if err != nil {
			return nil, fmt.Errorf("sunspec: model header at %d: %w", addr, err)
		}
		if len(data) < 4 {
			return nil, fmt.Errorf("sunspec: short model header at %d", addr)
		}

		id := u16At(data, 0)
		if id == endModelID {
			return models, nil
		}
		length := u16At(data, 1)

		if _, seen := models[id]; !seen {
			models[id] = modelRegion{addr: addr + 2, length: length}
		}
		addr += 2 + length
	}
}

// readRegion reads a model payload, chunking to stay within the per-request
// register limit.
func readRegion(r registerReader, region modelRegion) ([]byte, error) {
	data := make([]byte, 0, int(region.length)*2)
	addr := region.addr
	remaining := region.length
	for remaining > 0 {
		qty := remaining
		if qty > maxReadQuantity {
			qty = maxReadQuantity
		}
		chunk, err := r.ReadHoldingRegisters(addr, qty)
		if err != nil {
			return nil, err
		}
		if len(chunk) != int(qty)*2 {
			return nil, fmt.Errorf("sunspec: short read at %d: got %d bytes, want %d", addr, len(chunk), qty*2)
		}
		data = append(data, chunk...)
		addr += qty
		remaining -= qty
	}
	return data, nil
}

// u16At returns the big-endian uint16 at register offset reg.
func u16At(data []byte, reg int) uint16 {
	return uint16(data[reg*2])<<8 | uint16(data[reg*2+1])
}

// i16At returns the big-endian int16 at register offset reg.
func i16At(data []byte, reg int) int16 {
	return int16(u16At(data, reg))
}

// u32At returns the big-endian uint32 spanning registers reg and reg+1.
func u32At(data []byte, reg int) uint32 {
	return uint32(u16At(data, reg))<<16 | uint32(u16At(data, reg+1))
}
