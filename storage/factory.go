package storage

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/blang/semver"
	"github.com/janelia-flyem/ndimg/ndimg"
)

// Factory creates containers of one layout.
type Factory interface {
	// Name returns the registered name of the layout, e.g., "array".
	Name() string

	// UseOptimizedContainers reports whether dimension-specialized containers
	// are chosen when available.
	UseOptimizedContainers() bool

	SetOptimizedContainerUse(optimized bool)

	// SetParameters applies a TOML fragment of backend-specific settings.
	// Unknown keys and malformed input are logged and ignored.
	SetParameters(params string)

	// Create returns a container for the given primitive, extent and number of
	// entities per pixel.
	Create(t ndimg.DataType, dims []int, entitiesPerPixel int) (Container, error)
}

// FactoryInfo describes a registered layout.
type FactoryInfo struct {
	Name        string
	Description string
	Version     semver.Version
	New         func() Factory
}

var (
	registryMu sync.RWMutex
	registry   = map[string]FactoryInfo{}
)

// RegisterFactory makes a layout available by name.  It is called from the
// init() of each layout.
func RegisterFactory(info FactoryInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, found := registry[info.Name]; found {
		ndimg.Errorf("container factory %q registered twice; keeping the first\n", info.Name)
		return
	}
	registry[info.Name] = info
}

// NewFactory returns a new factory for a registered layout.
func NewFactory(name string) (Factory, error) {
	registryMu.RLock()
	info, found := registry[name]
	registryMu.RUnlock()
	if !found {
		return nil, fmt.Errorf("no container factory registered with name %q", name)
	}
	return info.New(), nil
}

// Factories returns the registered layouts sorted by name.
func Factories() []FactoryInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()
	infos := make([]FactoryInfo, 0, len(registry))
	for _, info := range registry {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// FactoryFromConfig returns the factory selected by a [storage] configuration section.
func FactoryFromConfig(c ndimg.StorageConfig) (Factory, error) {
	name := c.Factory
	if name == "" {
		name = "array"
	}
	f, err := NewFactory(name)
	if err != nil {
		return nil, err
	}
	f.SetOptimizedContainerUse(c.Optimized)
	if len(c.Params) != 0 {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c.Params); err != nil {
			return nil, fmt.Errorf("could not encode %q parameters: %v", name, err)
		}
		f.SetParameters(buf.String())
	}
	return f, nil
}

func mustVersion(s string) semver.Version {
	ver, err := semver.Make(s)
	if err != nil {
		panic(fmt.Sprintf("bad container factory version %q: %v", s, err))
	}
	return ver
}

// decodeParameters decodes a TOML fragment into v, logging keys v doesn't know.
func decodeParameters(name, params string, v interface{}) {
	md, err := toml.Decode(params, v)
	if err != nil {
		ndimg.Warningf("ignoring malformed %s container parameters %q: %v\n", name, params, err)
		return
	}
	for _, key := range md.Undecoded() {
		ndimg.Warningf("ignoring unknown %s container parameter %q\n", name, key.String())
	}
}

// optimizedFlag is embedded by factories for the shared optimized-layout switch.
type optimizedFlag struct {
	Optimized bool `toml:"optimized"`
}

func (f *optimizedFlag) UseOptimizedContainers() bool { return f.Optimized }

func (f *optimizedFlag) SetOptimizedContainerUse(optimized bool) { f.Optimized = optimized }
