// Package targets collects the hosts a multi-host command runs against.
package targets

import (
	"bufio"
	"bytes"
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/specterops/xf/internal/logger"
	"github.com/specterops/xf/internal/smb"
)

// Target types
const (
	TypeIPv4 = "ipv4"
	TypeIPv6 = "ipv6"
	TypeName = "name"
)

// Target is one host to connect to.
type Target struct {
	Type  string
	Value string
}

// Options holds target loading options.
type Options struct {
	// TargetsFile lists one host per line. Blank lines and lines starting
	// with # are skipped.
	TargetsFile string
	// Targets are hosts given on the command line, in any form
	// smb.ParseHost accepts.
	Targets []string
}

// LoadTargets reads, deduplicates and classifies the hosts of opts. Entries
// that are not a host are logged and skipped.
func LoadTargets(fsys afero.Fs, opts Options, log logger.LoggerInterface) ([]Target, error) {
	var raw []string

	if opts.TargetsFile != "" {
		log.Debug("Loading targets from file: " + opts.TargetsFile)
		lines, err := loadFromFile(fsys, opts.TargetsFile)
		if err != nil {
			return nil, fmt.Errorf("read targets %s: %w", opts.TargetsFile, err)
		}
		raw = append(raw, lines...)
	}
	raw = append(raw, opts.Targets...)

	var final []Target
	for _, t := range raw {
		host, err := smb.ParseHost(strings.TrimSpace(t))
		if err != nil {
			log.Debug(fmt.Sprintf("Target '%s' was not added: %v", t, err))
			continue
		}
		final = append(final, classify(host))
	}
	return uniqueTargets(final), nil
}

// classify types host. IPv4-mapped IPv6 addresses count as IPv4.
func classify(host string) Target {
	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	switch {
	case err != nil:
		// Names compare without case
		return Target{Type: TypeName, Value: strings.ToLower(host)}
	case addr.Unmap().Is4():
		return Target{Type: TypeIPv4, Value: addr.Unmap().String()}
	}
	return Target{Type: TypeIPv6, Value: addr.String()}
}

// loadFromFile loads targets from a file, one per line.
func loadFromFile(fsys afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	var targets []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			targets = append(targets, line)
		}
	}
	return targets, scanner.Err()
}

// uniqueTargets returns unique targets sorted by type, then value.
func uniqueTargets(input []Target) []Target {
	seen := make(map[Target]bool)
	var result []Target
	for _, t := range input {
		if !seen[t] {
			seen[t] = true
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return result[i].Type < result[j].Type
		}
		return result[i].Value < result[j].Value
	})
	return result
}
