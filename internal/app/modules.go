package app

import (
	"github.com/vk/predictgrid/internal/registry"
	"github.com/vk/predictgrid/modules/linear"
	"github.com/vk/predictgrid/modules/samplers"
	"github.com/vk/predictgrid/modules/serialize"
)

// coreModules is the definitive list of all modules that are compiled into
// the predictgrid binary.
func coreModules(appConfig *Config) []registry.Module {
	return []registry.Module{
		&samplers.Module{},
		&linear.Module{},
		&serialize.Module{Region: appConfig.Region},
	}
}
