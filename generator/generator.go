// Package generator produces synthetic log records at a fixed rate.
//
// A Pool splits the requested rate across workers. Every worker owns a sink,
// a RateEmitter writing its share of records once per tick, and a
// TickScheduler driving the emitter at a fixed cadence.
package generator
