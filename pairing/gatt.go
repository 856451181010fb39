// Helpers for declaring the GATT application, its services, characteristics
// and descriptors in a chain.

package pairing

import (
	"strings"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus"
	"github.com/muka/go-bluetooth/bluez"
	"github.com/muka/go-bluetooth/bluez/profile"
	"github.com/muka/go-bluetooth/service"
)

type HandleRead = func() ([]byte, error)
type HandleWrite = func(value []byte) error

// Standard characteristics of the device information service.
const (
	deviceInformationUuid = "180A"
	modelNumberUuid       = "2A24"
	serialNumberUuid      = "2A25"
	firmwareRevisionUuid  = "2A26"
	manufacturerNameUuid  = "2A29"

	userDescriptionUuid = "2901"
	presentationUuid    = "2904"

	// utf8 string format of the characteristic presentation descriptor
	formatUtf8 = 25
)

// handlerKey identifies a characteristic callback. Only the provisioning
// service registers callbacks, so the characteristic UUID is enough.
func handlerKey(characteristicUuid string) string {
	return strings.ToUpper(characteristicUuid)
}

type gattApp struct {
	app           *service.Application
	err           error
	readHandlers  map[string]HandleRead
	writeHandlers map[string]HandleWrite
}

type gattService struct {
	*gattApp
	uuid    string
	service *service.GattService1
}

type gattCharacteristic struct {
	*gattService
	characteristic *service.GattCharacteristic1
}

func newGattApp(objectName string, objectPath string, localName string) *gattApp {
	a := &gattApp{
		readHandlers:  make(map[string]HandleRead),
		writeHandlers: make(map[string]HandleWrite),
	}

	var err error

	a.app, err = service.NewApplication(&service.ApplicationConfig{
		ObjectName: objectName,
		ObjectPath: dbus.ObjectPath(objectPath),
		LocalName:  localName,
		ReadFunc:   a.handleRead,
		WriteFunc:  a.handleWrite,
	})
	if err != nil {
		a.err = errors.Errorf("could not create gatt application: %v", err)
	}

	return a
}

func (a *gattApp) handleRead(app *service.Application, serviceUuid string, characteristicUuid string) ([]byte, error) {
	if read, ok := a.readHandlers[handlerKey(characteristicUuid)]; ok {
		return read()
	}

	return nil, service.NewCallbackError(service.CallbackNotRegistered, "")
}

func (a *gattApp) handleWrite(app *service.Application, serviceUuid string, characteristicUuid string, value []byte) error {
	if write, ok := a.writeHandlers[handlerKey(characteristicUuid)]; ok {
		return write(value)
	}

	return service.NewCallbackError(service.CallbackNotRegistered, "")
}

// run exports the application on D-Bus and reports the first error hit while
// declaring it.
func (a *gattApp) run() (*service.Application, error) {
	if a.err != nil {
		return nil, a.err
	}

	err := a.app.Run()
	if err != nil {
		return nil, errors.Errorf("could not run gatt application: %v", err)
	}

	return a.app, nil
}

func (a *gattApp) primaryService(uuid string, advertised bool) *gattService {
	s := &gattService{gattApp: a, uuid: uuid}

	if a.err != nil {
		return s
	}

	svc, err := a.app.CreateService(&profile.GattService1Properties{
		Primary: true,
		UUID:    uuid,
	}, advertised)
	if err != nil {
		a.err = errors.Errorf("could not create service %v: %v", uuid, err)
		return s
	}

	err = a.app.AddService(svc)
	if err != nil {
		a.err = errors.Errorf("could not add service %v: %v", uuid, err)
		return s
	}

	s.service = svc

	return s
}

// staticString declares a read only characteristic with a fixed utf8 value.
func (s *gattService) staticString(uuid string, value string, description string) *gattCharacteristic {
	return s.characteristic(uuid, []byte(value), nil, nil).
		describe(description).
		presentUtf8()
}

func (s *gattService) dynamic(uuid string, read HandleRead, write HandleWrite) *gattCharacteristic {
	return s.characteristic(uuid, nil, read, write)
}

func (s *gattService) characteristic(uuid string, value []byte, read HandleRead, write HandleWrite) *gattCharacteristic {
	c := &gattCharacteristic{gattService: s}

	if s.err != nil {
		return c
	}

	var flags []string
	key := handlerKey(uuid)

	if read != nil || value != nil {
		flags = append(flags, bluez.FlagCharacteristicRead)
	}

	if read != nil {
		s.readHandlers[key] = read
	}

	if write != nil {
		flags = append(flags, bluez.FlagCharacteristicWrite)
		s.writeHandlers[key] = write
	}

	characteristic, err := s.service.CreateCharacteristic(&profile.GattCharacteristic1Properties{
		UUID:  uuid,
		Value: value,
		Flags: flags,
	})
	if err != nil {
		s.err = errors.Errorf("could not create characteristic %v: %v", uuid, err)
		return c
	}

	err = s.service.AddCharacteristic(characteristic)
	if err != nil {
		s.err = errors.Errorf("could not add characteristic %v: %v", uuid, err)
		return c
	}

	c.characteristic = characteristic

	return c
}

func (c *gattCharacteristic) describe(description string) *gattCharacteristic {
	return c.descriptor(userDescriptionUuid, []byte(description))
}

func (c *gattCharacteristic) presentUtf8() *gattCharacteristic {
	return c.descriptor(presentationUuid, []byte{formatUtf8})
}

func (c *gattCharacteristic) descriptor(uuid string, value []byte) *gattCharacteristic {
	if c.err != nil {
		return c
	}

	descriptor, err := c.characteristic.CreateDescriptor(&profile.GattDescriptor1Properties{
		UUID:  uuid,
		Value: value,
		Flags: []string{
			bluez.FlagDescriptorRead,
		},
	})
	if err != nil {
		c.err = errors.Errorf("could not create descriptor %v: %v", uuid, err)
		return c
	}

	err = c.characteristic.AddDescriptor(descriptor)
	if err != nil {
		c.err = errors.Errorf("could not add descriptor %v: %v", uuid, err)
		return c
	}

	return c
}
