// internal/transport/scan.go
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ScanResult is one responsive host found during discovery
type ScanResult struct {
	Address  string        `json:"ip_address"`
	Port     int           `json:"port"`
	Latency  time.Duration `json:"latency"`
	ScanTime time.Time     `json:"scan_time"`
}

// maxScanWorkers bounds concurrent connection probes
const maxScanWorkers = 32

// ScanNetwork probes every host of a /24 subnet for an open raw-printing
// port. Unreachable hosts are simply absent from the result; a scan over a
// quiet network returns an empty slice, not an error.
func ScanNetwork(ctx context.Context, subnet string, port int, timeout time.Duration, logger *zap.Logger) ([]ScanResult, error) {
	_, network, err := net.ParseCIDR(subnet)
	if err != nil {
		return nil, fmt.Errorf("invalid subnet %q: %w", subnet, err)
	}

	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	logger.Info("Scanning network for printers",
		zap.String("subnet", subnet),
		zap.Int("port", port),
		zap.Duration("timeout", timeout),
	)

	hosts := hostsInNetwork(network)

	var (
		results []ScanResult
		mutex   sync.Mutex
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, maxScanWorkers)

	var scanErr error
	for _, host := range hosts {
		if err := ctx.Err(); err != nil {
			scanErr = err
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(host string) {
			defer wg.Done()
			defer func() { <-sem }()

			start := time.Now()
			address := net.JoinHostPort(host, fmt.Sprintf("%d", port))

			dialer := &net.Dialer{Timeout: timeout}
			conn, err := dialer.DialContext(ctx, "tcp", address)
			if err != nil {
				return
			}
			conn.Close()

			mutex.Lock()
			results = append(results, ScanResult{
				Address:  host,
				Port:     port,
				Latency:  time.Since(start),
				ScanTime: time.Now(),
			})
			mutex.Unlock()
		}(host)
	}

	// In-flight probes still hold the results mutex; the slice is only
	// safe to hand back after every worker has finished.
	wg.Wait()

	if scanErr != nil {
		logger.Warn("Network scan aborted",
			zap.String("subnet", subnet),
			zap.Int("found", len(results)),
			zap.Error(scanErr),
		)
		return results, scanErr
	}

	logger.Info("Network scan completed",
		zap.String("subnet", subnet),
		zap.Int("found", len(results)),
	)

	return results, nil
}

// hostsInNetwork enumerates usable host addresses of an IPv4 network,
// skipping the network and broadcast addresses
func hostsInNetwork(network *net.IPNet) []string {
	var hosts []string

	ip := network.IP.To4()
	if ip == nil {
		return hosts
	}

	for addr := nextIP(ip); network.Contains(addr); addr = nextIP(addr) {
		if isBroadcast(addr, network) {
			break
		}
		hosts = append(hosts, addr.String())
	}

	return hosts
}

func nextIP(ip net.IP) net.IP {
	next := make(net.IP, len(ip))
	copy(next, ip)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}
	return next
}

func isBroadcast(ip net.IP, network *net.IPNet) bool {
	broadcast := make(net.IP, len(network.IP))
	for i := range network.IP {
		broadcast[i] = network.IP[i] | ^network.Mask[i]
	}
	return ip.Equal(broadcast)
}
