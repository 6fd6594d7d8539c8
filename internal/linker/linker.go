package linker

import (
	"fmt"
	"os"
	"syscall"

	"github.com/agistaris/sigillink/internal/domain"
)

// Linker deploys and undeploys mod files to game directories.
type Linker interface {
	Deploy(src, dst string) error
	Undeploy(dst string) error
	IsDeployed(dst string) (bool, error)
	Method() domain.LinkMethod
}

// New creates a linker for the given method.
func New(method domain.LinkMethod) Linker {
	switch method {
	case domain.LinkHardlink:
		return NewHardlink()
	case domain.LinkCopy:
		return NewCopy()
	default:
		return NewSymlink()
	}
}

// Resolver chooses hardlink vs symlink per destination root, per §4.8 step
// 3: a destination sharing the library's cache filesystem gets a hardlink,
// anything else gets a symlink. The choice is cached per root for the
// lifetime of one deploy, and Summary reports whether every choice this
// resolver made agreed.
type Resolver struct {
	cacheDev uint64
	modes    map[string]domain.LinkMethod
	used     map[domain.LinkMethod]struct{}
}

// NewResolver stats cacheRoot (the library's per-game data directory that
// holds mods/, creating it if absent) to learn the filesystem every hardlink
// decision is compared against.
func NewResolver(cacheRoot string) (*Resolver, error) {
	dev, err := filesystemID(cacheRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve library cache filesystem: %w", err)
	}
	return &Resolver{
		cacheDev: dev,
		modes:    map[string]domain.LinkMethod{},
		used:     map[domain.LinkMethod]struct{}{},
	}, nil
}

// For returns the Linker this resolver has chosen for targetRoot, computing
// and caching the decision on first use.
func (r *Resolver) For(targetRoot string) (Linker, error) {
	method, ok := r.modes[targetRoot]
	if !ok {
		dev, err := filesystemID(targetRoot)
		if err != nil {
			return nil, fmt.Errorf("resolve destination filesystem %s: %w", targetRoot, err)
		}
		method = domain.LinkSymlink
		if dev == r.cacheDev {
			method = domain.LinkHardlink
		}
		r.modes[targetRoot] = method
	}
	r.used[method] = struct{}{}
	return New(method), nil
}

// Summary reports the aggregate link mode across every root this resolver
// has resolved: none, the single mode used everywhere, or mixed.
func (r *Resolver) Summary() domain.LinkModeSummary {
	switch len(r.used) {
	case 0:
		return domain.LinkModeNone
	case 1:
		for mode := range r.used {
			if mode == domain.LinkHardlink {
				return domain.LinkModeHardlink
			}
			return domain.LinkModeSymlink
		}
	}
	return domain.LinkModeMixed
}

func filesystemID(path string) (uint64, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, fmt.Errorf("%s: filesystem id unavailable on this platform", path)
	}
	return uint64(stat.Dev), nil
}
