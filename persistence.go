package zwcore

import (
	"github.com/shimmeringbee/persistence"
	"github.com/shimmeringbee/zwcore/compat"
	"github.com/shimmeringbee/zwcore/devices"
	"strconv"
	"strings"
)

const (
	nodeSectionKey           = "node"
	identitySectionKey       = "identity"
	commandClassesSectionKey = "commandclasses"

	canSleepKey        = "CanSleep"
	statusKey          = "Status"
	manufacturerIDKey  = "ManufacturerID"
	productTypeKey     = "ProductType"
	productIDKey       = "ProductID"
	firmwareVersionKey = "FirmwareVersion"
	listKey            = "List"
)

func (d *Driver) sectionRemoveNode(i NodeID) bool {
	return d.section.Section(nodeSectionKey).SectionDelete(i.String())
}

func (d *Driver) sectionForNode(i NodeID) persistence.Section {
	return d.section.Section(nodeSectionKey, i.String())
}

func (d *Driver) nodeListFromPersistence() []NodeID {
	var nodeList []NodeID

	for _, k := range d.section.Section(nodeSectionKey).SectionKeys() {
		if id, err := strconv.ParseUint(k, 10, 16); err == nil {
			nodeList = append(nodeList, NodeID(id))
		}
	}

	return nodeList
}

func storeIdentity(s persistence.Section, i devices.Identity) {
	s.Set(manufacturerIDKey, strconv.FormatUint(uint64(i.ManufacturerID), 16))
	s.Set(productTypeKey, strconv.FormatUint(uint64(i.ProductType), 16))
	s.Set(productIDKey, strconv.FormatUint(uint64(i.ProductID), 16))
	s.Set(firmwareVersionKey, i.FirmwareVersion)
}

func loadIdentity(s persistence.Section) (devices.Identity, bool) {
	var i devices.Identity

	for key, field := range map[string]*uint16{
		manufacturerIDKey: &i.ManufacturerID,
		productTypeKey:    &i.ProductType,
		productIDKey:      &i.ProductID,
	} {
		str, ok := s.String(key)
		if !ok {
			return devices.Identity{}, false
		}

		v, err := strconv.ParseUint(str, 16, 16)
		if err != nil {
			return devices.Identity{}, false
		}

		*field = uint16(v)
	}

	i.FirmwareVersion, _ = s.String(firmwareVersionKey)

	return i, true
}

// storeCommandClasses replaces the persisted support table of a node, each endpoint is a
// section holding a comma separated list of hex command classes.
func storeCommandClasses(s persistence.Section, table map[compat.Endpoint][]compat.CommandClass) {
	s.SectionDelete(commandClassesSectionKey)
	ccs := s.Section(commandClassesSectionKey)

	for ep, list := range table {
		values := make([]string, len(list))
		for i, cc := range list {
			values[i] = strconv.FormatUint(uint64(cc), 16)
		}

		ccs.Section(strconv.Itoa(int(ep))).Set(listKey, strings.Join(values, ","))
	}
}

func loadCommandClasses(s persistence.Section) map[compat.Endpoint][]compat.CommandClass {
	table := map[compat.Endpoint][]compat.CommandClass{}
	ccs := s.Section(commandClassesSectionKey)

	for _, k := range ccs.SectionKeys() {
		ep, err := strconv.ParseUint(k, 10, 8)
		if err != nil {
			continue
		}

		str, _ := ccs.Section(k).String(listKey)
		list := []compat.CommandClass{}

		for _, v := range strings.Split(str, ",") {
			if cc, err := strconv.ParseUint(v, 16, 16); err == nil {
				list = append(list, compat.CommandClass(cc))
			}
		}

		table[compat.Endpoint(ep)] = list
	}

	return table
}
