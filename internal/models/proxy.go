package models

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Proxy is a network proxy made available to the automation subsystem.
type Proxy struct {
	ID        string
	Address   string // IPv4:port
	Country   string
	IsActive  bool
	CreatedAt time.Time
}

// IsValidProxyAddress accepts IPv4:port with a port in 1..65535
func IsValidProxyAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.To4() == nil || strings.Contains(host, ":") {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}
