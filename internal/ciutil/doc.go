// Package ciutil detects CI environments and locates the external services
// integration tests run against. Outside CI a missing service skips the test;
// inside CI it fails it, so a misconfigured pipeline cannot pass silently.
package ciutil
