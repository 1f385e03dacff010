// Package status mounts the daemon's HTTP surface:
//
//	GET  /status   running flag and the last cycle report
//	POST /cycle    start a cycle now (202, or 409 while one runs)
//	GET  /metrics  Prometheus metrics
package status
