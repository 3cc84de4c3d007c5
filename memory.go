package main

import (
	"github.com/pbnjay/memory"
)

const gibibyte = 1 << 30

// totalMemoryGB returns the total system memory in whole GiB, or 0 if it
// cannot be determined.
func totalMemoryGB() int {
	return int(memory.TotalMemory() / gibibyte)
}

// exceedsMemory reports whether the requested heap is larger than the
// system memory. An unknown total never exceeds.
func exceedsMemory(heapGB int, totalGB int) bool {
	return totalGB > 0 && heapGB > totalGB
}

// suggestedHeapGB leaves one GiB for the system.
func suggestedHeapGB(totalGB int) int {
	if totalGB <= 1 {
		return 1
	}
	return totalGB - 1
}
