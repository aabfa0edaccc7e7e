// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors classifies transport-level failures for user-friendly
// reporting. Backend execution errors never come through here; those carry
// an ExecutionResponse and get an error panel; this package only deals with
// failures where no response exists at all.
package httperrors

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Category is a coarse transport failure classification.
type Category string

const (
	CategoryTimeout Category = "timeout"
	CategoryDNS     Category = "dns"
	CategoryRefused Category = "refused"
	CategoryTLS     Category = "tls"
	CategoryGeneric Category = "generic"
)

// Classify determines the failure category of a transport error.
func Classify(err error) Category {
	if err == nil {
		return CategoryGeneric
	}
	if isTimeout(err) {
		return CategoryTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryDNS
	}
	if isRefused(err) {
		return CategoryRefused
	}
	if isTLS(err) {
		return CategoryTLS
	}
	return CategoryGeneric
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}

func isRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLS(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") ||
		strings.Contains(s, "certificate") ||
		strings.Contains(s, "handshake")
}

// Show prints a troubleshooting message for a transport failure against the
// given backend host.
func Show(err error, host string) {
	switch Classify(err) {
	case CategoryTimeout:
		pterm.Printf("⏱️  Connection to %s timed out\n", host)
		pterm.Println()
		pterm.Println("The backend took too long to respond. This could mean:")
		pterm.Println("  • The execution service is under heavy load")
		pterm.Println("  • A firewall is blocking the connection")
		pterm.Println()
	case CategoryDNS:
		pterm.Printf("🌐 Cannot resolve %s\n", host)
		pterm.Println()
		pterm.Println("Please check:")
		pterm.Println("  • Your internet connection is working")
		pterm.Println("  • The configured backend URL is spelled correctly")
		pterm.Println()
	case CategoryRefused:
		pterm.Printf("🚫 Connection to %s refused\n", host)
		pterm.Println()
		pterm.Println("The backend is not accepting connections. This could mean:")
		pterm.Println("  • The execution service is not running")
		pterm.Println("  • The configured port is wrong")
		pterm.Println()
		pterm.Println("If you meant a local backend, start it and retry.")
		pterm.Println()
	case CategoryTLS:
		pterm.Printf("🔒 Secure connection to %s failed\n", host)
		pterm.Println()
		pterm.Println("Cannot establish HTTPS. Check the certificate, any network")
		pterm.Println("proxy, and your system clock.")
		pterm.Println()
	default:
		pterm.Printf("❌ Cannot reach the execution backend at %s\n", host)
		pterm.Println()
		short := err.Error()
		if len(short) > 120 {
			short = short[:120] + "…"
		}
		pterm.Debug.Printf("Technical details: %s\n", short)
	}
}

// HostOf extracts the hostname from a URL for error messages.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "the backend"
	}
	return u.Host
}
