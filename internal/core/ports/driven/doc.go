// Package driven defines the interfaces the core depends on: local
// stores, the backend gateway and the reachability probe. Adapters
// implement these ports.
package driven
