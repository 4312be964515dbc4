package app

import (
	"github.com/vk/assetforge/internal/registry"
	"github.com/vk/assetforge/modules/font"
	"github.com/vk/assetforge/modules/passthrough"
	"github.com/vk/assetforge/modules/texture"
)

// coreModules is the definitive list of all processors that are compiled
// into the assetforge binary. Extension lookups prefer exact matches, so the
// catch-all passthrough only claims files nothing else handles.
var coreModules = []registry.Module{
	&texture.Module{},
	&font.Module{},
	&passthrough.Module{},
}
