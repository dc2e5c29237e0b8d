// Package client rejects api calls that do not come from the admin frontend.
//
// The frontend sends X-Requested-With: web together with the shared api key.
// Browser redirects (Google login), the home page, health, metrics and
// uploaded files are reachable without them.
package client
