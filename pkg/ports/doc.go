// Package ports defines the interfaces between the wizard core and its collaborators:
// session storage and locking, device location, address resolution, route metrics,
// translation and time.
package ports
