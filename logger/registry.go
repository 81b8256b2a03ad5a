package logger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// registry holds loggers by client name. A dispatcher created without an
// explicit logger looks its logger up here.
var registry = &clientRegistry{
	loggers: make(map[string]*Logger),
}

type clientRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register routes logs of the named client to l. A nil l removes the entry.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if l == nil {
		delete(registry.loggers, name)
		return
	}
	registry.loggers[name] = l
}

// Get returns the logger registered for name. Unregistered names get the
// global logger tagged with name as its component.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Registered returns the registered client names in order.
func Registered() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.loggers))
	for name := range registry.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterLevels registers, for each client in levels, the global logger
// tagged with the client name and filtered at the given level:
//
//	logger.RegisterLevels(map[string]string{"search": "warn", "billing": "debug"})
//
// Nothing is registered if any level is invalid.
func RegisterLevels(levels map[string]string) error {
	parsed := make(map[string]zerolog.Level, len(levels))
	for name, lvl := range levels {
		level, err := zerolog.ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("logger level for %q: %w", name, err)
		}
		parsed[name] = level
	}
	for name, level := range parsed {
		Register(name, GetGlobalLogger().WithComponent(name).WithLevel(level))
	}
	return nil
}

// WithLevel returns a copy of l filtered at level.
func (l *Logger) WithLevel(level zerolog.Level) *Logger {
	return &Logger{logger: l.logger.Level(level), service: l.service}
}
