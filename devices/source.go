package devices

import (
	"fmt"
	"github.com/shimmeringbee/zwcore/compat"
	"github.com/shimmeringbee/zwcore/firmware"
	"gopkg.in/yaml.v3"
	"strconv"
)

// Device configuration files are YAML, holding either a single entry or a list of entries:
//
//	manufacturer: Heatit Controls AB
//	manufacturerId: 0x019b
//	label: Z-TRM3
//	devices:
//	  - productType: 0x0003
//	    productId: [0x0201, 0x0203]
//	firmwareVersion:
//	  min: "4.0"
//	  max: "4.9"
//	compat:
//	  commandClasses:
//	    add:
//	      0x31:
//	        endpoints: [1, 2, 3]
//
// compat may also be a list of blocks, each with an optional "$if" condition.

type entrySource struct {
	Manufacturer    string          `yaml:"manufacturer"`
	ManufacturerID  *hexUint16      `yaml:"manufacturerId"`
	Label           string          `yaml:"label"`
	Description     string          `yaml:"description"`
	Devices         []productSource `yaml:"devices"`
	FirmwareVersion *rangeSource    `yaml:"firmwareVersion"`
	If              string          `yaml:"$if"`
	Compat          compatSource    `yaml:"compat"`
	Metadata        map[string]any  `yaml:",inline"`
}

type productSource struct {
	ProductType uint16SetSource `yaml:"productType"`
	ProductID   uint16SetSource `yaml:"productId"`
}

type rangeSource struct {
	Min string `yaml:"min"`
	Max string `yaml:"max"`
}

type compatSource []compatBlockSource

type compatBlockSource struct {
	If             string               `yaml:"$if"`
	CommandClasses commandClassesSource `yaml:"commandClasses"`
	Extra          map[string]any       `yaml:",inline"`
}

type commandClassesSource struct {
	Add    map[string]overrideSource `yaml:"add"`
	Remove map[string]overrideSource `yaml:"remove"`
}

type overrideSource struct {
	Endpoints endpointsSource `yaml:"endpoints"`
}

type hexUint16 uint16

type uint16SetSource []uint16

type endpointsSource struct {
	all       bool
	endpoints []compat.Endpoint
}

func parseUint(s string, bits int) (uint64, error) {
	return strconv.ParseUint(s, 0, bits)
}

func (h *hexUint16) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a 16 bit value", value.Line)
	}

	v, err := parseUint(value.Value, 16)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	*h = hexUint16(v)
	return nil
}

func (s *uint16SetSource) UnmarshalYAML(value *yaml.Node) error {
	var nodes []*yaml.Node

	switch value.Kind {
	case yaml.ScalarNode:
		nodes = []*yaml.Node{value}
	case yaml.SequenceNode:
		nodes = value.Content
	default:
		return fmt.Errorf("line %d: expected a value or list of values", value.Line)
	}

	set := make(uint16SetSource, 0, len(nodes))

	for _, n := range nodes {
		var h hexUint16
		if err := h.UnmarshalYAML(n); err != nil {
			return err
		}
		set = append(set, uint16(h))
	}

	*s = set
	return nil
}

func (c *compatSource) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var block compatBlockSource
		if err := value.Decode(&block); err != nil {
			return err
		}
		*c = compatSource{block}
	case yaml.SequenceNode:
		var blocks []compatBlockSource
		if err := value.Decode(&blocks); err != nil {
			return err
		}
		*c = blocks
	default:
		return fmt.Errorf("line %d: compat must be a mapping or a list of mappings", value.Line)
	}

	return nil
}

func (e *endpointsSource) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "*" {
			e.all = true
			return nil
		}

		ep, err := parseUint(value.Value, 8)
		if err != nil {
			return fmt.Errorf("line %d: endpoint: %w", value.Line, err)
		}
		e.endpoints = []compat.Endpoint{compat.Endpoint(ep)}
	case yaml.SequenceNode:
		for _, n := range value.Content {
			ep, err := parseUint(n.Value, 8)
			if err != nil {
				return fmt.Errorf("line %d: endpoint: %w", n.Line, err)
			}
			e.endpoints = append(e.endpoints, compat.Endpoint(ep))
		}
	case yaml.MappingNode:
		// Keyed by endpoint, the values describe the endpoint and are not interpreted.
		for i := 0; i < len(value.Content); i += 2 {
			k := value.Content[i]
			ep, err := parseUint(k.Value, 8)
			if err != nil {
				return fmt.Errorf("line %d: endpoint: %w", k.Line, err)
			}
			e.endpoints = append(e.endpoints, compat.Endpoint(ep))
		}
	default:
		return fmt.Errorf("line %d: endpoints must be \"*\", a list or a mapping", value.Line)
	}

	return nil
}

func (e endpointsSource) set() compat.EndpointSet {
	if e.all {
		return compat.AllEndpoints()
	}

	return compat.NewEndpointSet(e.endpoints...)
}

func (s entrySource) toEntry(filename string) (Entry, error) {
	if s.ManufacturerID == nil {
		return Entry{}, fmt.Errorf("%w: %s: manufacturerId missing", ErrInvalidEntry, filename)
	}

	e := Entry{
		Filename:       filename,
		Manufacturer:   s.Manufacturer,
		Label:          s.Label,
		Description:    s.Description,
		ManufacturerID: uint16(*s.ManufacturerID),
		If:             s.If,
		Metadata:       s.Metadata,
	}

	for _, d := range s.Devices {
		e.Devices = append(e.Devices, ProductMatch{
			ProductType: Uint16Set(d.ProductType),
			ProductID:   Uint16Set(d.ProductID),
		})
	}

	if s.FirmwareVersion != nil {
		r, err := firmware.NewRange(s.FirmwareVersion.Min, s.FirmwareVersion.Max)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: %s: %w", ErrInvalidEntry, filename, err)
		}
		e.FirmwareVersion = &r
	}

	for i, block := range s.Compat {
		flags, err := block.toFlags()
		if err != nil {
			return Entry{}, fmt.Errorf("%w: %s: compat block %d: %w", ErrInvalidEntry, filename, i, err)
		}

		if block.If == "" {
			e.Compat = e.Compat.Merge(flags)
		} else {
			e.ConditionalCompat = append(e.ConditionalCompat, ConditionalCompat{If: block.If, Flags: flags})
		}
	}

	return e, nil
}

func (b compatBlockSource) toFlags() (compat.Flags, error) {
	add, err := toOverrides(b.CommandClasses.Add)
	if err != nil {
		return compat.Flags{}, fmt.Errorf("add: %w", err)
	}

	remove, err := toOverrides(b.CommandClasses.Remove)
	if err != nil {
		return compat.Flags{}, fmt.Errorf("remove: %w", err)
	}

	return compat.Flags{AddCCs: add, RemoveCCs: remove, Extra: b.Extra}, nil
}

func toOverrides(in map[string]overrideSource) (map[compat.CommandClass]compat.Override, error) {
	if len(in) == 0 {
		return nil, nil
	}

	out := make(map[compat.CommandClass]compat.Override, len(in))

	for k, o := range in {
		cc, err := parseUint(k, 16)
		if err != nil {
			return nil, fmt.Errorf("command class %q: %w", k, err)
		}

		out[compat.CommandClass(cc)] = compat.Override{Endpoints: o.Endpoints.set()}
	}

	return out, nil
}

// decodeFile decodes the entries held in a single device configuration file.
func decodeFile(filename string, data []byte) ([]Entry, error) {
	var doc yaml.Node

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidEntry, filename, err)
	}

	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]

	var sources []entrySource

	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&sources); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidEntry, filename, err)
		}
	case yaml.MappingNode:
		var s entrySource
		if err := root.Decode(&s); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidEntry, filename, err)
		}
		sources = []entrySource{s}
	default:
		return nil, fmt.Errorf("%w: %s: expected an entry or a list of entries", ErrInvalidEntry, filename)
	}

	entries := make([]Entry, 0, len(sources))

	for _, s := range sources {
		e, err := s.toEntry(filename)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}
