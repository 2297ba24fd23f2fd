// Package application wires the resolved configuration record into the
// HTTP handlers, router and server. The record is passed in explicitly;
// nothing in the service looks configuration up from a global.
package application
