package arch

// PrepareMeasurement busy-loops for roughly 2x the configured processor
// frequency worth of iterations and then takes 200 throwaway cycle-counter
// reads, so that the CPU's frequency governor has settled at its top
// frequency before any real measurement begins. freqHz is the compile-time
// PROCESSOR_FREQ constant for the target machine (pkg/cachectx).
func PrepareMeasurement(freqHz uint64) {
	iterations := freqHz * 2
	var sink uint64
	for i := uint64(0); i < iterations; i++ {
		sink += i
	}
	discard = sink

	for i := 0; i < 200; i++ {
		t := StartTimer()
		_ = StopTimer(t)
	}
}

// discard anchors the busy-loop accumulator so the compiler cannot prove the
// loop above has no observable effect and eliminate it.
var discard uint64
