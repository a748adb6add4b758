package sunspec

import (
	"fmt"
	"strings"
	"time"

	"github.com/goburrow/modbus"
)

// Common Model (1) payload register offsets.
const (
	commonMn = 0  // Manufacturer, 16 regs
	commonMd = 16 // Model, 16 regs
	commonSN = 48 // Serial number, 16 regs

	commonStringRegs = 16
	commonMinLength  = 64
)

// Config holds the Modbus TCP connection parameters.
type Config struct {
	Host    string
	Port    int
	UnitID  uint8
	Timeout time.Duration
}

// Identity is the device self-description read from the Common Model.
type Identity struct {
	Manufacturer string
	Model        string
	SerialNumber string
}

// Logger is the narrow logging interface the client needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// Client is a SunSpec-over-Modbus-TCP device handle. Connect dials the
// device and scans its model chain; field access goes through model blocks
// bound to the scanned regions.
//
// Not safe for concurrent use; the bridge drives it from a single loop.
type Client struct {
	cfg Config
	log Logger

	handler *modbus.TCPClientHandler
	reader  registerReader
	models  map[uint16]modelRegion
}

// New creates a Client. No network activity happens until Connect.
func New(cfg Config, log Logger) *Client {
	return &Client{cfg: cfg, log: log}
}

// Connect dials the device and scans its SunSpec model chain. A previous
// connection, if any, is torn down first so every call starts from a clean
// transport and a fresh scan.
func (c *Client) Connect() error {
	if err := c.Close(); err != nil && c.log != nil {
		c.log.Debug("stale connection close failed", "error", err)
	}

	h := modbus.NewTCPClientHandler(fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port))
	h.Timeout = c.cfg.Timeout
	h.SlaveId = c.cfg.UnitID

	if err := h.Connect(); err != nil {
		return fmt.Errorf("sunspec: connect %s:%d: %w", c.cfg.Host, c.cfg.Port, err)
	}

	reader := modbus.NewClient(h)
	models, err := scanModels(reader)
	if err != nil {
		h.Close()
		return err
	}

	c.handler = h
	c.reader = reader
	c.models = models

	if c.log != nil {
		ids := make([]uint16, 0, len(models))
		for id := range models {
			ids = append(ids, id)
		}
		c.log.Info("sunspec device scanned", "models", ids)
	}
	return nil
}

// Close releases the connection. Safe to call repeatedly or before Connect.
func (c *Client) Close() error {
	if c.handler == nil {
		return nil
	}
	h := c.handler
	c.teardown()
	return h.Close()
}

func (c *Client) teardown() {
	c.handler = nil
	c.reader = nil
	c.models = nil
}

// Connected reports whether the client holds an open, scanned connection.
func (c *Client) Connected() bool {
	return c.reader != nil
}

// HasModel reports whether the scanned model chain contains the given id.
func (c *Client) HasModel(id uint16) bool {
	_, ok := c.models[id]
	return ok
}

// DeviceInfo reads the Common Model and returns the device identity.
func (c *Client) DeviceInfo() (Identity, error) {
	if c.reader == nil {
		return Identity{}, ErrNotConnected
	}
	region, ok := c.models[ModelCommon]
	if !ok {
		return Identity{}, fmt.Errorf("%w: common model", ErrModelNotPresent)
	}

	data, err := readRegion(c.reader, region)
	if err != nil {
		return Identity{}, fmt.Errorf("sunspec: common model read: %w", err)
	}
	if region.length < commonMinLength {
		return Identity{}, fmt.Errorf("sunspec: common model too short: %d registers", region.length)
	}

	return Identity{
		Manufacturer: decodeString(data, commonMn, commonStringRegs),
		Model:        decodeString(data, commonMd, commonStringRegs),
		SerialNumber: decodeString(data, commonSN, commonStringRegs),
	}, nil
}

// MPPT returns a block handle for the MPPT extension model.
func (c *Client) MPPT() (*MPPTBlock, error) {
	if c.reader == nil {
		return nil, ErrNotConnected
	}
	region, ok := c.models[ModelMPPT]
	if !ok {
		return nil, fmt.Errorf("%w: mppt model", ErrModelNotPresent)
	}
	return &MPPTBlock{reader: c.reader, region: region}, nil
}

// decodeString extracts a SunSpec string field: registers hold two ASCII
// bytes each, NUL padded. Trailing NULs and whitespace are trimmed.
func decodeString(data []byte, reg, regs int) string {
	raw := data[reg*2 : (reg+regs)*2]
	return strings.TrimRight(string(raw), "\x00 \t")
}
