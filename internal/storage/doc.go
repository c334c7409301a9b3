// Package storage defines the folder backend contract shared by the cloud
// drive client and the local filesystem implementation.
package storage
