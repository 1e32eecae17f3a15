package providers

import (
	"updatescan/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}
	if c.conf.Store.Driver == "file" && c.conf.Store.ContentDir == "" {
		return validate.Errors{"store.contentDir": {"required": "contentDir is required for the file driver"}}
	}
	for name, timing := range map[string]structures.AlarmTiming{
		"autoscan.normal.period": c.conf.Autoscan.Normal,
		"autoscan.debug.period":  c.conf.Autoscan.Debug,
	} {
		if timing.Period <= 0 || timing.Delay < 0 {
			return validate.Errors{name: {"min": "alarm timing must have a positive period and non-negative delay"}}
		}
	}
	return nil
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}
