// Package board describes which network media a device is built with.
package board

import (
	"os"

	"github.com/go-errors/errors"
	"gopkg.in/yaml.v3"
)

type Medium string

const (
	MediumWifi     Medium = "wifi"
	MediumHaLow    Medium = "halow"
	MediumEthernet Medium = "ethernet"
	MediumCellular Medium = "cellular"
)

var (
	ErrConflictingMedia = errors.New("wifi and halow cannot be fitted together")
	ErrDuplicateMedium  = errors.New("medium is listed more than once")
	ErrUnknownMedium    = errors.New("unknown medium")
)

// Interface is one fitted network medium.
type Interface struct {
	Medium Medium `yaml:"medium"`
	// Name is the Linux network interface, e.g. wlan0.
	Name string `yaml:"name"`
	// Service is the D-Bus name of the backend, when it differs from the
	// default one.
	Service      string `yaml:"service,omitempty"`
	Supports5GHz bool   `yaml:"5ghz,omitempty"`
	APN          string `yaml:"apn,omitempty"`
}

type Board struct {
	Name         string      `yaml:"name"`
	Manufacturer string      `yaml:"manufacturer"`
	Model        string      `yaml:"model"`
	Interfaces   []Interface `yaml:"interfaces"`
}

// Default is used when no board file is given.
func Default() *Board {
	return &Board{
		Name:         "generic",
		Manufacturer: "The Lightning Land",
		Model:        "generic",
		Interfaces: []Interface{
			{Medium: MediumWifi, Name: "wlan0"},
			{Medium: MediumEthernet, Name: "eth0"},
		},
	}
}

func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("could not read board file: %v", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Board, error) {
	b := &Board{}

	err := yaml.Unmarshal(data, b)
	if err != nil {
		return nil, errors.Errorf("could not parse board file: %v", err)
	}

	err = b.Validate()
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (b *Board) Validate() error {
	seen := make(map[Medium]bool)

	for _, itf := range b.Interfaces {
		switch itf.Medium {
		case MediumWifi, MediumHaLow, MediumEthernet, MediumCellular:
		default:
			return errors.WrapPrefix(ErrUnknownMedium, string(itf.Medium), 0)
		}

		if seen[itf.Medium] {
			return errors.WrapPrefix(ErrDuplicateMedium, string(itf.Medium), 0)
		}

		if itf.Medium != MediumCellular && itf.Name == "" {
			return errors.Errorf("%v interface needs a name", itf.Medium)
		}

		seen[itf.Medium] = true
	}

	if seen[MediumWifi] && seen[MediumHaLow] {
		return ErrConflictingMedia
	}

	return nil
}

func (b *Board) Has(medium Medium) bool {
	_, ok := b.Interface(medium)
	return ok
}

func (b *Board) Interface(medium Medium) (Interface, bool) {
	for _, itf := range b.Interfaces {
		if itf.Medium == medium {
			return itf, true
		}
	}

	return Interface{}, false
}
