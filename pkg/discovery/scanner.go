// Package discovery implements network scanning for the commissioner: it
// finds Thread networks accepting external commissioners by browsing for
// border agent DNS-SD advertisements (_meshcop._udp).
package discovery

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/pion/logging"
)

// ServiceMeshCoP is the DNS-SD service advertised by Thread border agents.
const ServiceMeshCoP = "_meshcop._udp"

// DefaultDomain is the DNS-SD domain used for browsing.
const DefaultDomain = "local."

// DefaultScanTimeout bounds a scan when the caller's context has no deadline.
const DefaultScanTimeout = 10 * time.Second

// Border agent TXT record keys (Thread 1.2 border agent advertisement).
const (
	txtNetworkName   = "nn"
	txtExtendedPANID = "xp"
)

// BorderAgent describes one discovered border agent / joinable network.
type BorderAgent struct {
	// InstanceName is the DNS-SD instance name.
	InstanceName string

	// HostName is the agent's target host name.
	HostName string

	// Port is the agent's MeshCoP UDP port.
	Port int

	// IPs are the resolved addresses, IPv6 first.
	IPs []net.IP

	// NetworkName is the Thread network name from the TXT record, if
	// advertised.
	NetworkName string

	// ExtendedPANID is the network's extended PAN ID from the TXT record,
	// if advertised.
	ExtendedPANID []byte

	// Text holds the raw TXT record key-value pairs.
	Text map[string]string
}

// Scanner finds networks a commissioner could petition.
type Scanner interface {
	// ScanForNetworks browses for border agents until the context ends or
	// the scan timeout expires. An empty result is not an error.
	ScanForNetworks(ctx context.Context) ([]BorderAgent, error)
}

// MDNSResolver is the interface for mDNS browsing.
// This allows for dependency injection in tests.
//
// Browse takes ownership of the entries channel: it returns once the query
// is issued, delivers results asynchronously, and closes the channel when
// the context ends. This is the contract of zeroconf.Resolver.Browse and
// injected resolvers must honor it; the scanner never closes the channel
// itself.
type MDNSResolver interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// zeroconfResolver is the production implementation using grandcat/zeroconf.
type zeroconfResolver struct {
	resolver *zeroconf.Resolver
}

func newZeroconfResolver() (*zeroconfResolver, error) {
	r, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, err
	}
	return &zeroconfResolver{resolver: r}, nil
}

func (z *zeroconfResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	return z.resolver.Browse(ctx, service, domain, entries)
}

// MDNSScannerConfig configures the MDNSScanner.
type MDNSScannerConfig struct {
	// MDNSResolver is the underlying mDNS implementation.
	// If nil, the default zeroconf resolver is used.
	MDNSResolver MDNSResolver

	// ScanTimeout bounds scans whose context has no deadline.
	// If zero, DefaultScanTimeout is used.
	ScanTimeout time.Duration

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// MDNSScanner discovers border agents via mDNS.
type MDNSScanner struct {
	config   MDNSScannerConfig
	resolver MDNSResolver
	log      logging.LeveledLogger
}

// NewMDNSScanner creates a scanner with the given configuration.
func NewMDNSScanner(config MDNSScannerConfig) (*MDNSScanner, error) {
	resolver := config.MDNSResolver
	if resolver == nil {
		zr, err := newZeroconfResolver()
		if err != nil {
			return nil, err
		}
		resolver = zr
	}
	if config.ScanTimeout == 0 {
		config.ScanTimeout = DefaultScanTimeout
	}
	s := &MDNSScanner{config: config, resolver: resolver}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("discovery")
	}
	return s, nil
}

// ScanForNetworks implements Scanner.
func (s *MDNSScanner) ScanForNetworks(ctx context.Context) ([]BorderAgent, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ScanTimeout)
		defer cancel()
	}

	// Browse returns right after issuing the query; the resolver keeps
	// delivering entries until the context ends and closes the channel.
	entries := make(chan *zeroconf.ServiceEntry)
	if err := s.resolver.Browse(ctx, ServiceMeshCoP, DefaultDomain, entries); err != nil {
		return nil, err
	}

	var agents []BorderAgent
	for entry := range entries {
		agents = append(agents, entryToBorderAgent(entry))
	}
	if s.log != nil {
		s.log.Debugf("scan found %d border agents", len(agents))
	}
	return agents, nil
}

// entryToBorderAgent converts a zeroconf entry to a BorderAgent.
func entryToBorderAgent(entry *zeroconf.ServiceEntry) BorderAgent {
	agent := BorderAgent{
		InstanceName: entry.Instance,
		HostName:     entry.HostName,
		Port:         entry.Port,
		Text:         make(map[string]string, len(entry.Text)),
	}

	// IPv6 first: Thread networks are IPv6 meshes.
	for _, ip := range entry.AddrIPv6 {
		agent.IPs = append(agent.IPs, ip)
	}
	for _, ip := range entry.AddrIPv4 {
		agent.IPs = append(agent.IPs, ip)
	}

	for _, txt := range entry.Text {
		k, v, ok := strings.Cut(txt, "=")
		if !ok {
			continue
		}
		agent.Text[k] = v
		switch k {
		case txtNetworkName:
			agent.NetworkName = v
		case txtExtendedPANID:
			agent.ExtendedPANID = []byte(v)
		}
	}
	return agent
}
