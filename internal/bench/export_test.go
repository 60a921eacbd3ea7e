package bench

func (b *Benchmark) onAfterBarrier(f func(workerID uint64)) {
	b.trace.afterBarrier = f
}

func (b *Benchmark) onBeforeSend(f func(workerID uint64)) {
	b.trace.beforeSend = f
}

func (b *Benchmark) setSpawnLimit(n int) {
	b.trace.spawnLimit = n
}
