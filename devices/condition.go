package devices

import (
	"fmt"
	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"github.com/shimmeringbee/zwcore/firmware"
)

// conditionEnv is the environment entry conditions are evaluated against, for example:
//
//	ProductID == 0x0203 && FirmwareAtLeast("4.2")
type conditionEnv struct {
	ManufacturerID  int
	ProductType     int
	ProductID       int
	FirmwareVersion string
}

func newConditionEnv(i Identity) conditionEnv {
	return conditionEnv{
		ManufacturerID:  int(i.ManufacturerID),
		ProductType:     int(i.ProductType),
		ProductID:       int(i.ProductID),
		FirmwareVersion: i.FirmwareVersion,
	}
}

// FirmwareAtLeast is false if either version can not be parsed.
func (c conditionEnv) FirmwareAtLeast(v string) bool {
	cmp, err := firmware.Compare(c.FirmwareVersion, v)
	return err == nil && cmp >= 0
}

// FirmwareBelow is false if either version can not be parsed.
func (c conditionEnv) FirmwareBelow(v string) bool {
	cmp, err := firmware.Compare(c.FirmwareVersion, v)
	return err == nil && cmp < 0
}

func compileCondition(src string) (*vm.Program, error) {
	if src == "" {
		return nil, nil
	}

	p, err := expr.Compile(src, expr.Env(conditionEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("condition compilation: %w", err)
	}

	return p, nil
}

// evaluate treats a missing condition as holding, and a condition that fails at runtime as
// not holding.
func evaluate(p *vm.Program, env conditionEnv) bool {
	if p == nil {
		return true
	}

	out, err := expr.Run(p, env)
	if err != nil {
		return false
	}

	b, ok := out.(bool)
	return ok && b
}
