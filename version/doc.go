// Package version reports the build version of the service binary. The
// bootstrap uses it when the configuration does not name a version.
package version
