package config

import (
	"fmt"

	"github.com/arthur-debert/serverwrap/pkg/registry"
)

type triggerValidator func(Trigger) error

var triggerKinds = registry.New[triggerValidator]("trigger type")

func init() {
	triggerKinds.MustRegister("startup", func(t Trigger) error {
		if t.Port != 0 {
			return fmt.Errorf("startup triggers take no port")
		}
		return nil
	})
	triggerKinds.MustRegister("webhook", func(t Trigger) error {
		if t.Port < 1 || t.Port > 65535 {
			return fmt.Errorf("webhook port %d out of range", t.Port)
		}
		return nil
	})
}

func validateTrigger(t Trigger) error {
	validate, err := triggerKinds.Get(t.Type)
	if err != nil {
		return err
	}
	return validate(t)
}

// TriggerTypes lists the trigger types a configuration may declare.
func TriggerTypes() []string {
	return triggerKinds.Names()
}
