// internal/transport/usb.go
package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"print-service/internal/model"
)

// usbPrinterClass is the USB device class for printers
const usbPrinterClass = gousb.ClassPrinter

// USBTransport delivers payloads to a USB printer. When vendor/product ids
// are configured the exact device is matched; otherwise the first
// printer-class device found is used.
type USBTransport struct {
	vendorID  string
	productID string

	ctx      *gousb.Context
	device   *gousb.Device
	intf     *gousb.Interface
	intfDone func()
	outEndpt *gousb.OutEndpoint

	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
}

// NewUSBTransport creates a USB transport for one printer
func NewUSBTransport(vendorID, productID string, logger *zap.Logger) *USBTransport {
	return &USBTransport{
		vendorID:  vendorID,
		productID: productID,
		logger: logger.With(
			zap.String("transport", "usb"),
			zap.String("vendor_id", vendorID),
			zap.String("product_id", productID),
		),
	}
}

// Open finds the device, claims its interface and resolves the out endpoint
func (ut *USBTransport) Open(ctx context.Context) error {
	ut.mutex.Lock()
	defer ut.mutex.Unlock()

	if ut.isOpen {
		return nil
	}

	ut.ctx = gousb.NewContext()

	device, err := ut.findAndOpenDevice()
	if err != nil {
		ut.ctx.Close()
		ut.ctx = nil
		return err
	}

	intf, done, err := device.DefaultInterface()
	if err != nil {
		device.Close()
		ut.ctx.Close()
		ut.ctx = nil
		return fmt.Errorf("failed to claim USB interface: %w", err)
	}

	outEndpt, err := firstOutEndpoint(intf)
	if err != nil {
		done()
		device.Close()
		ut.ctx.Close()
		ut.ctx = nil
		return err
	}

	ut.device = device
	ut.intf = intf
	ut.intfDone = done
	ut.outEndpt = outEndpt
	ut.isOpen = true

	ut.logger.Debug("USB connection opened")
	return nil
}

// Write sends data to the out endpoint
func (ut *USBTransport) Write(ctx context.Context, data []byte) error {
	ut.mutex.Lock()
	defer ut.mutex.Unlock()

	if !ut.isOpen || ut.outEndpt == nil {
		return fmt.Errorf("USB connection not open")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	n, err := ut.outEndpt.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to USB device: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	ut.logger.Debug("USB write completed", zap.Int("bytes", n))
	return nil
}

// Close releases the interface, device and context
func (ut *USBTransport) Close() error {
	ut.mutex.Lock()
	defer ut.mutex.Unlock()

	if !ut.isOpen {
		return nil
	}

	if ut.intfDone != nil {
		ut.intfDone()
		ut.intfDone = nil
	}
	ut.intf = nil

	if ut.device != nil {
		ut.device.Close()
		ut.device = nil
	}

	if ut.ctx != nil {
		ut.ctx.Close()
		ut.ctx = nil
	}

	ut.outEndpt = nil
	ut.isOpen = false
	return nil
}

// Kind returns the connection kind
func (ut *USBTransport) Kind() model.ConnectionType {
	return model.ConnectionTypeUSB
}

func (ut *USBTransport) findAndOpenDevice() (*gousb.Device, error) {
	var vendorID, productID gousb.ID
	matchByID := ut.vendorID != "" && ut.productID != ""

	if matchByID {
		vid, err := parseHexID(ut.vendorID)
		if err != nil {
			return nil, fmt.Errorf("invalid vendor ID: %w", err)
		}
		pid, err := parseHexID(ut.productID)
		if err != nil {
			return nil, fmt.Errorf("invalid product ID: %w", err)
		}
		vendorID, productID = vid, pid
	}

	devices, err := ut.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if matchByID {
			return desc.Vendor == vendorID && desc.Product == productID
		}
		if desc.Class == usbPrinterClass {
			return true
		}
		for _, cfg := range desc.Configs {
			for _, intf := range cfg.Interfaces {
				for _, setting := range intf.AltSettings {
					if setting.Class == usbPrinterClass {
						return true
					}
				}
			}
		}
		return false
	})
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	if len(devices) == 0 {
		if matchByID {
			return nil, fmt.Errorf("USB device not found (VID: %04X, PID: %04X)", uint16(vendorID), uint16(productID))
		}
		return nil, fmt.Errorf("no USB printer found")
	}

	if len(devices) > 1 {
		for i := 1; i < len(devices); i++ {
			devices[i].Close()
		}
		ut.logger.Warn("Multiple matching USB devices found, using first one")
	}

	return devices[0], nil
}

// firstOutEndpoint resolves the first host-to-device endpoint on the
// claimed interface. Thermal printers expose exactly one bulk out endpoint.
func firstOutEndpoint(intf *gousb.Interface) (*gousb.OutEndpoint, error) {
	for _, desc := range intf.Setting.Endpoints {
		if desc.Direction == gousb.EndpointDirectionOut {
			return intf.OutEndpoint(desc.Number)
		}
	}
	return nil, fmt.Errorf("no out endpoint on USB interface")
}

// parseHexID parses hex ID string (0x1234 or 1234)
func parseHexID(hexStr string) (gousb.ID, error) {
	hexStr = strings.TrimPrefix(hexStr, "0x")

	id, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}
	return gousb.ID(id), nil
}
