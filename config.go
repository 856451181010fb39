package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "provisiond.conf"
	defaultDataDir        = "/var/lib/provisiond"
	defaultLink           = "ble"
	defaultMachine        = "linux"
	defaultAdapter        = "hci0"
	defaultListen         = ":9000"
	defaultVendor         = "The Lightning Land"
	defaultFirmwareType   = "provisiond"
	defaultMachineIDPath  = "/etc/machine-id"
	defaultTick           = 20 * time.Millisecond
	defaultConnectTimeout = 60 * time.Second
)

type profilingConfig struct {
	Listen string `long:"listen" description:"Serve pprof on this address, e.g. localhost:6060"`
}

type config struct {
	ShowVersion bool   `short:"v" long:"version" description:"Display version information and exit"`
	Debug       bool   `long:"debug" description:"Log debug messages"`
	ConfigFile  string `long:"configfile" description:"Path to an ini configuration file"`
	DataDir     string `long:"datadir" description:"Directory for the persisted network configuration"`

	Board          string        `long:"board" description:"Path to the board yaml file describing the fitted network media"`
	Link           string        `long:"link" choice:"ble" choice:"websocket" description:"How the companion app reaches the device"`
	Machine        string        `long:"machine" choice:"linux" choice:"mock" description:"Host control used for reboot and hostname"`
	Adapter        string        `long:"adapter" description:"Bluetooth adapter for the ble link"`
	Listen         string        `long:"listen" description:"Address of the local http api"`
	Vendor         string        `long:"vendor" description:"Vendor reported to the companion app"`
	Template       string        `long:"template" description:"Template id reported to the companion app"`
	FirmwareType   string        `long:"fwtype" description:"Firmware type reported to the companion app"`
	Name           string        `long:"name" description:"Advertised device name. Derived from the machine id when empty"`
	MachineIDPath  string        `long:"machineid" description:"File holding the machine id"`
	Hostname       string        `long:"hostname" description:"Hostname to apply on start"`
	Tick           time.Duration `long:"tick" description:"Interval of the main polling loop"`
	ConnectTimeout time.Duration `long:"connect-timeout" description:"How long a provisioned connection may take to come up"`

	Profiling profilingConfig `group:"Profiling" namespace:"profiling"`
}

func defaultConfig() config {
	return config{
		DataDir:        defaultDataDir,
		ConfigFile:     filepath.Join(defaultDataDir, defaultConfigFilename),
		Link:           defaultLink,
		Machine:        defaultMachine,
		Adapter:        defaultAdapter,
		Listen:         defaultListen,
		Vendor:         defaultVendor,
		FirmwareType:   defaultFirmwareType,
		MachineIDPath:  defaultMachineIDPath,
		Tick:           defaultTick,
		ConnectTimeout: defaultConnectTimeout,
	}
}

// loadConfig reads the command line once to find the config file, applies
// the file, and then the command line again so flags win over the file.
func loadConfig() (*config, error) {
	preCfg := defaultConfig()

	_, err := flags.Parse(&preCfg)
	if err != nil {
		return nil, err
	}

	cfg := preCfg

	if _, err := os.Stat(preCfg.ConfigFile); err == nil {
		err := flags.IniParse(preCfg.ConfigFile, &cfg)
		if err != nil {
			return nil, err
		}
	}

	_, err = flags.Parse(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
