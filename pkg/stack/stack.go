// Package stack assembles the commissioner subsystem for a host process:
// the per-interface commissioning manager, the deep-sleep gate, and the
// network scanner, behind the single operator-facing surface.
package stack

import (
	"context"
	"time"

	"github.com/pion/logging"

	"github.com/threadmesh/commissioner/pkg/commissioning"
	"github.com/threadmesh/commissioner/pkg/discovery"
	"github.com/threadmesh/commissioner/pkg/sleep"
)

// Config configures the Stack.
type Config struct {
	// Transport carries petition and keep-alive messages. Required.
	Transport commissioning.Transport

	// Scanner finds joinable networks when a petition reports NoNetwork.
	// Optional; ScanForNetworks fails without one.
	Scanner discovery.Scanner

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory

	// Clock overrides the time source. Defaults to time.Now.
	Clock func() time.Time

	// MaxSleep caps the sleep budget reported by the gate.
	// Defaults to sleep.Unbounded.
	MaxSleep time.Duration
}

// Stack is the per-process aggregate. All methods must be called from the
// host's single thread of control, matching the run-to-completion model of
// the underlying packages.
type Stack struct {
	commissioner *commissioning.Manager
	gate         *sleep.Gate
	scanner      discovery.Scanner
	log          logging.LeveledLogger
}

// New creates a Stack with the given configuration.
func New(config Config) (*Stack, error) {
	mgr, err := commissioning.NewManager(commissioning.ManagerConfig{
		Transport:     config.Transport,
		LoggerFactory: config.LoggerFactory,
		Clock:         config.Clock,
	})
	if err != nil {
		return nil, err
	}

	gate := sleep.NewGate(sleep.GateConfig{
		Sources:       []sleep.ObligationSource{mgr},
		MaxSleep:      config.MaxSleep,
		LoggerFactory: config.LoggerFactory,
	})

	s := &Stack{
		commissioner: mgr,
		gate:         gate,
		scanner:      config.Scanner,
	}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("stack")
	}
	return s, nil
}

// Commissioner returns the commissioning manager.
func (s *Stack) Commissioner() *commissioning.Manager {
	return s.commissioner
}

// Gate returns the deep-sleep gate.
func (s *Stack) Gate() *sleep.Gate {
	return s.gate
}

// Register creates the commissioner for an interface.
func (s *Stack) Register(iface commissioning.InterfaceID) error {
	return s.commissioner.Register(iface)
}

// Unregister tears down the commissioner for an interface.
func (s *Stack) Unregister(iface commissioning.InterfaceID) error {
	return s.commissioner.Unregister(iface)
}

// PetitionStart starts the commissioning petition for an interface.
func (s *Stack) PetitionStart(iface commissioning.InterfaceID, commissionerID string, cb commissioning.StatusCallback) error {
	return s.commissioner.PetitionStart(iface, commissionerID, cb)
}

// PetitionKeepAlive refreshes the interface's petition.
func (s *Stack) PetitionKeepAlive(iface commissioning.InterfaceID, reported commissioning.State) error {
	return s.commissioner.PetitionKeepAlive(iface, reported)
}

// DeviceAdd registers a joinable device for the interface.
func (s *Stack) DeviceAdd(iface commissioning.InterfaceID, shortEUI64 bool, eui64 commissioning.EUI64, pskd []byte, cb commissioning.FinalizationCallback) error {
	return s.commissioner.DeviceAdd(iface, shortEUI64, eui64, pskd, cb)
}

// DeviceDelete removes a joinable device for the interface.
func (s *Stack) DeviceDelete(iface commissioning.InterfaceID, eui64 commissioning.EUI64) error {
	return s.commissioner.DeviceDelete(iface, eui64)
}

// DeviceNext enumerates the interface's joinable devices.
func (s *Stack) DeviceNext(c *commissioning.Cursor, iface commissioning.InterfaceID) (*commissioning.Cursor, *commissioning.Device, error) {
	return s.commissioner.DeviceNext(c, iface)
}

// HandleJoinerFinalization decides an incoming joiner finalize message.
func (s *Stack) HandleJoinerFinalization(iface commissioning.InterfaceID, eui64 commissioning.EUI64, message []byte) commissioning.Decision {
	return s.commissioner.HandleJoinerFinalization(iface, eui64, message)
}

// CheckSleepPossibility returns how long the stack may sleep; zero means
// sleep is not possible right now.
func (s *Stack) CheckSleepPossibility() time.Duration {
	return s.gate.CheckSleepPossibility()
}

// EnterSleep suspends the stack.
func (s *Stack) EnterSleep() error {
	return s.gate.EnterSleep()
}

// WakeupAndResync restarts the stack after sleeping for elapsed.
func (s *Stack) WakeupAndResync(elapsed time.Duration) (sleep.Outcome, time.Duration) {
	return s.gate.WakeupAndResync(elapsed)
}

// ScanForNetworks browses for joinable networks. Used after a petition
// reports NoNetwork.
func (s *Stack) ScanForNetworks(ctx context.Context) ([]discovery.BorderAgent, error) {
	if s.scanner == nil {
		return nil, discovery.ErrNoScanner
	}
	return s.scanner.ScanForNetworks(ctx)
}
