package rawrcache

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Keksclan/rawrcache/eviction"
	"github.com/Keksclan/rawrcache/region"
	platformerrors "github.com/jmgilman/go/errors"
)

// ErrInvalidConfig is returned by ConfigFromProperties.
var ErrInvalidConfig = platformerrors.New(platformerrors.CodeInvalidConfig, "invalid cache configuration")

// Property names accepted by ConfigFromProperties.
const (
	PropTimeToIdleSeconds         = "timeToIdleSeconds"
	PropTimeToLiveSeconds         = "timeToLiveSeconds"
	PropMaxEntriesLocalHeap       = "maxEntriesLocalHeap"
	PropMaxEntriesLocalDisk       = "maxEntriesLocalDisk"
	PropMemoryStoreEvictionPolicy = "memoryStoreEvictionPolicy"
)

// ConfigFromProperties builds a region configuration from string properties,
// starting from region.DefaultConfig. Durations are whole seconds.
func ConfigFromProperties(props map[string]string) (region.Config, error) {
	cfg := region.DefaultConfig()
	for key, raw := range props {
		raw = strings.TrimSpace(raw)
		switch key {
		case PropTimeToIdleSeconds:
			d, err := parseSeconds(key, raw)
			if err != nil {
				return region.Config{}, err
			}
			cfg.TimeToIdle = d
		case PropTimeToLiveSeconds:
			d, err := parseSeconds(key, raw)
			if err != nil {
				return region.Config{}, err
			}
			cfg.TimeToLive = d
		case PropMaxEntriesLocalHeap:
			n, err := parseCount(key, raw)
			if err != nil {
				return region.Config{}, err
			}
			cfg.MaxEntriesLocalHeap = int(n)
		case PropMaxEntriesLocalDisk:
			n, err := parseCount(key, raw)
			if err != nil {
				return region.Config{}, err
			}
			cfg.MaxEntriesLocalDisk = int(n)
		case PropMemoryStoreEvictionPolicy:
			kind, err := eviction.Parse(raw)
			if err != nil {
				return region.Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
			}
			cfg.EvictionPolicy = kind
		default:
			return region.Config{}, fmt.Errorf("%w: unknown property %q", ErrInvalidConfig, key)
		}
	}
	return cfg, nil
}

// parseSeconds rejects second counts a time.Duration cannot hold rather than
// letting them wrap.
func parseSeconds(key, raw string) (time.Duration, error) {
	n, err := parseCount(key, raw)
	if err != nil {
		return 0, err
	}
	if n > maxSeconds {
		return 0, fmt.Errorf("%w: %s: %d seconds is out of range", ErrInvalidConfig, key, n)
	}
	return time.Duration(n) * time.Second, nil
}

func parseCount(key, raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not an integer", ErrInvalidConfig, key, raw)
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}
