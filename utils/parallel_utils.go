package utils

import "sync"

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (iMin, iMax int) {
	iMin, iMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (iMax int) {
	if bn == -1 {
		iMax = pm.MaxIndex
		return
	}
	var (
		i1, i2 = pm.GetBucketRange(bn)
	)
	iMax = i2 - i1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into pm.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

// Barrier is a reusable synchronization point for a fixed group of
// lock-step workers. Every member must call Wait before any member
// proceeds past it; the barrier then resets for the next cycle.
type Barrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	size  int
	count int
	cycle int
}

func NewBarrier(size int) (b *Barrier) {
	b = &Barrier{size: size}
	b.cond = sync.NewCond(&b.mu)
	return
}

func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	cycle := b.cycle
	b.count++
	if b.count == b.size {
		b.count = 0
		b.cycle++
		b.cond.Broadcast()
		return
	}
	for cycle == b.cycle {
		b.cond.Wait()
	}
}
