package printer

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// Printer sends raw ESC/POS jobs to a receipt printer.
type Printer interface {
	Print(data []byte) error
	Close() error
	IsConnected() bool
}

// Printer types accepted by New
const (
	TypeNone    = "none"
	TypeUSB     = "usb"
	TypeNetwork = "network"
)

// Config selects and addresses a printer.
type Config struct {
	Type    string
	USBPath string // e.g. /dev/usb/lp0
	Address string // host:port, usually port 9100
	Timeout time.Duration
}

// New creates the printer described by cfg. An empty type means none.
func New(cfg Config) (Printer, error) {
	switch cfg.Type {
	case TypeUSB:
		if cfg.USBPath == "" {
			return nil, errors.New("printer: usb path is required for a usb printer")
		}
		return NewUSBPrinter(cfg.USBPath), nil
	case TypeNetwork:
		if cfg.Address == "" {
			return nil, errors.New("printer: address is required for a network printer")
		}
		p := NewNetworkPrinter(cfg.Address)
		if cfg.Timeout > 0 {
			p.timeout = cfg.Timeout
		}
		return p, nil
	case TypeNone, "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network or none)", cfg.Type)
	}
}

// USBPrinter writes each job to a character device. Jobs are serialized so
// two receipts never interleave on the paper.
type USBPrinter struct {
	mu   sync.Mutex
	path string
}

func NewUSBPrinter(devicePath string) *USBPrinter {
	return &USBPrinter{path: devicePath}
}

func (p *USBPrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *USBPrinter) Close() error { return nil }

func (p *USBPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// NetworkPrinter dials a raw TCP printer port for every job.
type NetworkPrinter struct {
	mu      sync.Mutex
	address string
	timeout time.Duration
}

func NewNetworkPrinter(address string) *NetworkPrinter {
	return &NetworkPrinter{address: address, timeout: 5 * time.Second}
}

func (p *NetworkPrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := net.DialTimeout("tcp", p.address, p.timeout)
	if err != nil {
		return fmt.Errorf("printer: dial %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(2 * p.timeout))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *NetworkPrinter) Close() error { return nil }

func (p *NetworkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

type nullPrinter struct{}

// NewNullPrinter discards every job.
func NewNullPrinter() Printer {
	return nullPrinter{}
}

func (nullPrinter) Print([]byte) error { return nil }
func (nullPrinter) Close() error       { return nil }
func (nullPrinter) IsConnected() bool  { return false }

// Capture keeps jobs in memory. Set Err to make Print fail.
type Capture struct {
	mu   sync.Mutex
	jobs [][]byte
	Err  error
}

func (c *Capture) Print(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.jobs = append(c.jobs, append([]byte(nil), data...))
	return nil
}

func (c *Capture) Close() error      { return nil }
func (c *Capture) IsConnected() bool { return c.Err == nil }

// Jobs returns a copy of the printed jobs in order.
func (c *Capture) Jobs() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.jobs...)
}
