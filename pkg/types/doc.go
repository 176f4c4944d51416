// Package types defines the entity schema model, the RecordStore interface,
// records and keys, configuration, and the standard errors shared by every
// storeadmin component.
package types
