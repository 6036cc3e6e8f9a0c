package http

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

type Page int

const (
	PageHome Page = iota
	PageCV
	PageConsole
)

func (p Page) String() string {
	switch p {
	case PageCV:
		return "cv"
	case PageConsole:
		return "console"
	}
	return "home"
}

// PageFor picks the page for a request. The admin subdomain and the
// /console path select the console, the cv subdomain and the /cv path the
// CV; everything else is the home page.
func PageFor(host, path string) Page {
	sub := Subdomain(host)
	switch {
	case sub == "admin", hasPathPrefix(path, "/console"):
		return PageConsole
	case sub == "cv", hasPathPrefix(path, "/cv"):
		return PageCV
	}
	return PageHome
}

// Subdomain returns the first label left of the registrable domain, e.g.
// "cv" for cv.salyem.dev and cv.localhost. IP addresses and bare domains
// have none.
func Subdomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	if strings.HasSuffix(host, ".localhost") {
		return strings.Split(host, ".")[0]
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil || site == host {
		return ""
	}
	rest := strings.TrimSuffix(host, "."+site)
	return strings.Split(rest, ".")[0]
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
