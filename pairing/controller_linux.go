package pairing

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/muka/go-bluetooth/api"
	"github.com/muka/go-bluetooth/linux/btmgmt"
	"github.com/muka/go-bluetooth/service"
	"github.com/the-lightning-land/provisiond/provision"
)

const (
	uuidSuffix = "-75dd-4a0e-b688-66b7df342cc6"

	provisionServiceUuidPrefix = "B10C"

	objectName = "land.lightning.provisiond"
	objectPath = "/provisiond/pairing/service"

	provisionServiceUuid = provisionServiceUuidPrefix + "0000" + uuidSuffix
	rxCharacteristicUuid = provisionServiceUuidPrefix + "0001" + uuidSuffix
	txCharacteristicUuid = provisionServiceUuidPrefix + "0002" + uuidSuffix

	// adapterSettleTime gives the adapter time to come back after a reset
	adapterSettleTime = 500 * time.Millisecond
)

type Config struct {
	// AdapterId is the local adapter, e.g. hci0.
	AdapterId       string
	Manufacturer    string
	Model           string
	Serial          string
	FirmwareVersion string
	Logger          Logger
}

// Controller exposes the provisioning protocol as a GATT service. The app
// writes messages to the rx characteristic and reads replies fragment by
// fragment from the tx characteristic.
type Controller struct {
	log     Logger
	config  Config
	queue   *messageQueue
	app     *service.Application
	running bool
}

var _ provision.Link = (*Controller)(nil)

func NewController(config *Config) *Controller {
	controller := &Controller{
		config: *config,
		queue:  newMessageQueue(),
	}

	if config.Logger != nil {
		controller.log = config.Logger
	} else {
		controller.log = noopLogger{}
	}

	return controller
}

// Open registers the GATT application and starts advertising as name.
func (c *Controller) Open(name string) error {
	if c.running {
		return nil
	}

	if c.app == nil {
		app, err := c.buildApp(name)
		if err != nil {
			return err
		}

		c.app = app
	}

	c.queue.reset()

	mgmt := btmgmt.NewBtMgmt(c.config.AdapterId)
	err := mgmt.Reset()
	if err != nil {
		return errors.Errorf("could not reset %v: %v", c.config.AdapterId, err)
	}

	time.Sleep(adapterSettleTime)

	gattManager, err := api.GetGattManager(c.config.AdapterId)
	if err != nil {
		return errors.Errorf("could not get gatt manager: %v", err)
	}

	err = gattManager.RegisterApplication(c.app.Path(), map[string]interface{}{})
	if err != nil {
		return errors.Errorf("could not register gatt application: %v", err)
	}

	err = c.app.StartAdvertising(c.config.AdapterId)
	if err != nil {
		return errors.Errorf("could not advertise: %v", err)
	}

	c.running = true

	c.log.Infof("Advertising as %v on %v", name, c.config.AdapterId)

	return nil
}

func (c *Controller) buildApp(name string) (*service.Application, error) {
	app := newGattApp(objectName, objectPath, name)

	provisioning := app.primaryService(provisionServiceUuid, true)
	provisioning.dynamic(rxCharacteristicUuid, nil, c.writeRx).
		describe("Provisioning Request")
	provisioning.dynamic(txCharacteristicUuid, c.readTx, nil).
		describe("Provisioning Response")

	info := app.primaryService(deviceInformationUuid, false)
	info.staticString(manufacturerNameUuid, c.config.Manufacturer, "Manufacturer Name")
	info.staticString(modelNumberUuid, c.config.Model, "Model Number")
	info.staticString(serialNumberUuid, c.config.Serial, "Serial Number")
	info.staticString(firmwareRevisionUuid, c.config.FirmwareVersion, "Firmware Revision")

	return app.run()
}

func (c *Controller) Close() error {
	if !c.running {
		return nil
	}

	c.running = false
	c.queue.reset()

	err := c.app.StopAdvertising()
	if err != nil {
		return errors.Errorf("could not stop advertising: %v", err)
	}

	gattManager, err := api.GetGattManager(c.config.AdapterId)
	if err != nil {
		return errors.Errorf("could not get gatt manager: %v", err)
	}

	err = gattManager.UnregisterApplication(c.app.Path())
	if err != nil {
		return errors.Errorf("could not unregister gatt application: %v", err)
	}

	return nil
}

// IsConnected reports whether a central has used the service recently.
func (c *Controller) IsConnected() bool {
	return c.running && c.queue.active()
}

func (c *Controller) Available() bool {
	return c.queue.available()
}

func (c *Controller) Read() ([]byte, error) {
	msg, ok := c.queue.pop()
	if !ok {
		return nil, errors.New("no message available")
	}

	return msg, nil
}

func (c *Controller) Write(data []byte) error {
	if !c.running {
		return errors.New("link is closed")
	}

	c.queue.push(data)

	return nil
}

func (c *Controller) writeRx(value []byte) error {
	c.log.Debugf("Received %d bytes", len(value))

	err := c.queue.receive(value)
	if err != nil {
		c.log.Warnf("Dropping inbound message: %v", err)
		return errors.Errorf("could not accept message: %v", err)
	}

	return nil
}

func (c *Controller) readTx() ([]byte, error) {
	return c.queue.next(), nil
}
