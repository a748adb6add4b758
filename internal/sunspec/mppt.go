package sunspec

import (
	"fmt"
	"math"

	"github.com/nerrad567/fronius-bridge/internal/telemetry"
)

// MPPT Extension Model (160) layout, in register offsets from the payload
// start. A fixed header is followed by one repeating block per module.
const (
	mpptDCASF = 0 // current scale factor
	mpptDCVSF = 1 // voltage scale factor
	mpptDCWSF = 2 // power scale factor
	mpptN     = 6 // module count

	mpptFixedRegs = 8

	modDCA   = 9  // current
	modDCV   = 10 // voltage
	modDCW   = 11 // power
	modTmp   = 16 // temperature, °C, unscaled
	modDCSt  = 17 // operating state
	modDCEvt = 18 // events bitfield, 2 regs

	moduleRegs = 20
)

// SunSpec "unimplemented" sentinels.
const (
	unimplUint16 = 0xFFFF
	unimplInt16  = -32768
	unimplUint32 = 0xFFFFFFFF
)

// MPPTBlock is a handle on the MPPT extension model. Refresh pulls the whole
// model into memory; field accessors decode from that copy, so one poll is
// one consistent register image.
//
// Accessors return telemetry.ErrFieldUnavailable for fields the firmware
// marks unimplemented, and for modules truncated out of the payload.
type MPPTBlock struct {
	reader registerReader
	region modelRegion
	data   []byte
}

// Refresh re-reads the model payload from the device.
func (b *MPPTBlock) Refresh() error {
	data, err := readRegion(b.reader, b.region)
	if err != nil {
		b.data = nil
		return fmt.Errorf("sunspec: mppt read: %w", err)
	}
	if len(data) < mpptFixedRegs*2 {
		b.data = nil
		return fmt.Errorf("sunspec: mppt payload too short: %d bytes", len(data))
	}
	b.data = data
	return nil
}

// ModuleCount returns the module count reported by the fixed block, or zero
// before the first successful Refresh.
func (b *MPPTBlock) ModuleCount() int {
	if b.data == nil {
		return 0
	}
	n := u16At(b.data, mpptN)
	if n == unimplUint16 {
		return 0
	}
	return int(n)
}

// Current returns the module's DC current in amps.
func (b *MPPTBlock) Current(module int) (float64, error) {
	return b.scaledField(module, modDCA, mpptDCASF)
}

// Voltage returns the module's DC voltage in volts.
func (b *MPPTBlock) Voltage(module int) (float64, error) {
	return b.scaledField(module, modDCV, mpptDCVSF)
}

// Power returns the module's DC power in watts.
func (b *MPPTBlock) Power(module int) (float64, error) {
	return b.scaledField(module, modDCW, mpptDCWSF)
}

// Temperature returns the module temperature in °C. The register is a plain
// int16 with no scale factor.
func (b *MPPTBlock) Temperature(module int) (float64, error) {
	reg, err := b.moduleReg(module, modTmp)
	if err != nil {
		return 0, err
	}
	raw := i16At(b.data, reg)
	if raw == unimplInt16 {
		return 0, telemetry.ErrFieldUnavailable
	}
	return float64(raw), nil
}

// OperatingState returns the module's raw DCSt enum value.
func (b *MPPTBlock) OperatingState(module int) (int, error) {
	reg, err := b.moduleReg(module, modDCSt)
	if err != nil {
		return 0, err
	}
	raw := u16At(b.data, reg)
	if raw == unimplUint16 {
		return 0, telemetry.ErrFieldUnavailable
	}
	return int(raw), nil
}

// Events returns the module's raw DCEvt bitfield.
func (b *MPPTBlock) Events(module int) (uint32, error) {
	reg, err := b.moduleReg(module, modDCEvt)
	if err != nil {
		return 0, err
	}
	if reg+1 >= len(b.data)/2 {
		return 0, telemetry.ErrFieldUnavailable
	}
	raw := u32At(b.data, reg)
	if raw == unimplUint32 {
		return 0, telemetry.ErrFieldUnavailable
	}
	return raw, nil
}

// scaledField reads a uint16 module field and applies the named scale factor.
func (b *MPPTBlock) scaledField(module, offset, sfReg int) (float64, error) {
	reg, err := b.moduleReg(module, offset)
	if err != nil {
		return 0, err
	}
	raw := u16At(b.data, reg)
	if raw == unimplUint16 {
		return 0, telemetry.ErrFieldUnavailable
	}
	return float64(raw) * scaleFactor(i16At(b.data, sfReg)), nil
}

// moduleReg maps a module index and field offset to an absolute register
// offset in the payload, checking the index and payload bounds. A module the
// payload truncates is reported as unavailable, not as an error.
func (b *MPPTBlock) moduleReg(module, offset int) (int, error) {
	if b.data == nil {
		return 0, ErrNotConnected
	}
	if module < 0 || module >= b.ModuleCount() {
		return 0, fmt.Errorf("%w: %d", ErrModuleOutOfRange, module)
	}
	reg := mpptFixedRegs + module*moduleRegs + offset
	if reg >= len(b.data)/2 {
		return 0, telemetry.ErrFieldUnavailable
	}
	return reg, nil
}

// scaleFactor converts a sunssf register value to a multiplier. The
// unimplemented sentinel means scale 0, i.e. multiply by 1.
func scaleFactor(sf int16) float64 {
	if sf == unimplInt16 {
		return 1
	}
	return math.Pow(10, float64(sf))
}
