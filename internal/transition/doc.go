// Package transition holds the pure half of the academic-year roll-over:
// roster snapshots, plan computation, simulation and the workflow state
// machine.
//
// Nothing in this package performs I/O. ComputePlan and Simulate are
// deterministic functions of their arguments; the service package loads the
// inputs and applies plans to storage.
package transition
