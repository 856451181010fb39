package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/provisiond/agent"
	"github.com/the-lightning-land/provisiond/api"
	"github.com/the-lightning-land/provisiond/board"
	"github.com/the-lightning-land/provisiond/connectivity"
	"github.com/the-lightning-land/provisiond/machine"
	"github.com/the-lightning-land/provisiond/network"
	"github.com/the-lightning-land/provisiond/pairing"
	"github.com/the-lightning-land/provisiond/provision"
	"github.com/the-lightning-land/provisiond/store"
	// Blank import to set up profiling HTTP handlers.
	_ "net/http/pprof"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// Date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

// provisiondMain is the true entry point for provisiond. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func provisiondMain() error {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// Load CLI configuration and defaults
	cfg, err := loadConfig()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	if cfg.Profiling.Listen != "" {
		go func() {
			log.Infof("Starting profiling server on %v", cfg.Profiling.Listen)
			// Redirect the root path
			http.Handle("/", http.RedirectHandler("/debug/pprof", http.StatusSeeOther))
			// All other handlers are registered on DefaultServeMux through the import of pprof
			err := http.ListenAndServe(cfg.Profiling.Listen, nil)
			if err != nil {
				log.Errorf("Could not run profiler: %v", err)
			}
		}()
	}

	b := board.Default()
	if cfg.Board != "" {
		b, err = board.Load(cfg.Board)
		if err != nil {
			return errors.Errorf("Could not load board: %v", err)
		}
	}

	log.Infof("Using board %v with %d network interfaces", b.Name, len(b.Interfaces))

	// provisiond.db persists networks saved by the companion app
	db, err := store.Open(cfg.DataDir)
	if err != nil {
		return errors.Errorf("Could not open database: %v", err)
	}

	log.Infof("Opened %v", db.Path())

	defer func() {
		err := db.Close()
		if err != nil {
			log.Errorf("Could not close database: %v", err)
		} else {
			log.Info("Closed database.")
		}
	}()

	// The host controller
	var m machine.Machine

	switch cfg.Machine {
	case "linux":
		m = machine.NewLinuxMachine(&machine.LinuxMachineConfig{
			Logger: log.New().WithField("system", "machine"),
		})
	case "mock":
		m = machine.NewMockMachine(&machine.MockMachineConfig{
			Logger: log.New().WithField("system", "machine"),
		})

		log.Info("Created a mock machine.")
	default:
		return errors.Errorf("Unknown machine type %v", cfg.Machine)
	}

	if err := m.Start(); err != nil {
		return errors.Errorf("Could not start machine: %v", err)
	}

	defer func() {
		err := m.Stop()
		if err != nil {
			log.Errorf("Could not properly stop machine: %v", err)
		} else {
			log.Infof("Stopped machine.")
		}
	}()

	registry, err := network.NewRegistry(&network.RegistryConfig{
		Transports: transportsFor(b),
		Logger:     log.New().WithField("system", "network"),
	})
	if err != nil {
		return errors.Errorf("Could not create network registry: %v", err)
	}

	defer func() {
		err := registry.Off()
		if err != nil {
			log.Errorf("Could not turn off all transports: %v", err)
		}
	}()

	name := cfg.Name
	if name == "" {
		name = deviceName(cfg, b)
	}

	identity := provision.Identity{
		DeviceName:      name,
		Vendor:          cfg.Vendor,
		TemplateID:      cfg.Template,
		FirmwareType:    cfg.FirmwareType,
		FirmwareVersion: Version,
	}

	// The channel the companion app talks over
	var link provision.Link
	var websocketLink *api.WebsocketLink

	switch cfg.Link {
	case "ble":
		link = pairing.NewController(&pairing.Config{
			AdapterId:       cfg.Adapter,
			Manufacturer:    b.Manufacturer,
			Model:           b.Model,
			Serial:          name,
			FirmwareVersion: Version,
			Logger:          log.New().WithField("system", "pairing"),
		})

		log.Infof("Created ble link on %v.", cfg.Adapter)
	case "websocket":
		websocketLink = api.NewWebsocketLink(&api.WebsocketLinkConfig{
			Logger: log.New().WithField("system", "link"),
		})
		link = websocketLink

		log.Infof("Created websocket link on %v.", cfg.Listen)
	default:
		return errors.Errorf("Unknown link type %v", cfg.Link)
	}

	session, err := provision.NewSession(&provision.Config{
		Link:     link,
		Registry: registry,
		Rebooter: m,
		Store:    db,
		Logger:   log.New().WithField("system", "provision"),
	})
	if err != nil {
		return errors.Errorf("Could not create provisioning session: %v", err)
	}

	orchestrator, err := connectivity.NewOrchestrator(&connectivity.OrchestratorConfig{
		Registry:       registry,
		Session:        session,
		Store:          db,
		Logger:         log.New().WithField("system", "connectivity"),
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		return errors.Errorf("Could not create orchestrator: %v", err)
	}

	session.SetProvisionCallback(orchestrator.Provision)

	// central loop driving everything the daemon does
	a, err := agent.NewAgent(&agent.Config{
		Registry:     registry,
		Session:      session,
		Orchestrator: orchestrator,
		Machine:      m,
		Store:        db,
		Identity:     identity,
		Hostname:     cfg.Hostname,
		Tick:         cfg.Tick,
		Logger:       log.New().WithField("system", "agent"),
	})
	if err != nil {
		return errors.Errorf("Could not create agent: %v", err)
	}

	log.Infof("Created agent as %v.", name)

	apiServer := api.New(&api.Config{
		Device: a,
		Link:   websocketLink,
		Log:    log.New().WithField("system", "api"),
	})

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return errors.Errorf("API server unable to listen on %v: %v", cfg.Listen, err)
	}

	defer lis.Close()

	go func() {
		err := apiServer.Serve(lis)
		if err != nil {
			log.Errorf("Could not serve api: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go reportConnectivity(ctx, connectivity.NewReporter(a))

	// Handle interrupt signals correctly
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		sig := <-signals
		log.Info(sig)
		log.Info("Received an interrupt, stopping agent...")
		a.Shutdown()
	}()

	// blocks until the agent is shut down
	err = a.Run()
	if err != nil {
		return errors.Errorf("Failed running agent: %v", err)
	}

	return nil
}

// transportsFor creates a transport for every medium fitted on the board.
func transportsFor(b *board.Board) []network.Transport {
	var transports []network.Transport

	for _, itf := range b.Interfaces {
		logger := log.New().WithField("system", string(itf.Medium))

		switch itf.Medium {
		case board.MediumWifi:
			transports = append(transports, network.NewWifiTransport(&network.WifiConfig{
				Interface:    itf.Name,
				Service:      itf.Service,
				Supports5GHz: itf.Supports5GHz,
				Logger:       logger,
			}))
		case board.MediumHaLow:
			transports = append(transports, network.NewHaLowTransport(&network.WifiConfig{
				Interface: itf.Name,
				Service:   itf.Service,
				Logger:    logger,
			}))
		case board.MediumEthernet:
			transports = append(transports, network.NewEthernetTransport(&network.EthernetConfig{
				Interface: itf.Name,
				Logger:    logger,
			}))
		case board.MediumCellular:
			transports = append(transports, network.NewCellularTransport(&network.CellularConfig{
				APN:    itf.APN,
				Logger: logger,
			}))
		}
	}

	return transports
}

func deviceName(cfg *config, b *board.Board) string {
	seed, err := machine.MachineID(cfg.MachineIDPath)
	if err != nil {
		log.Warnf("Falling back to hostname as device name seed: %v", err)

		seed, err = os.Hostname()
		if err != nil {
			log.Warnf("Could not read hostname: %v", err)
		}
	}

	return machine.DeviceName(b.Model, seed)
}

func reportConnectivity(ctx context.Context, reporter connectivity.Reporter) {
	state := reporter.CurrentState()
	log.Infof("Connectivity is %v", state)

	for reporter.WaitForStateChange(ctx, state) {
		state = reporter.CurrentState()
		log.Infof("Connectivity changed to %v", state)
	}
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := provisiondMain(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			log.WithError(err).Println("Failed running provisiond.")
		}
		os.Exit(1)
	}
}
